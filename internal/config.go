package internal

import (
	"os"
	"strings"

	"github.com/jinzhu/configor"
	log "github.com/sirupsen/logrus"
)

var Configuration = struct {
	Pos      PosConfiguration      `yaml:"pos"`
	Api      ApiConfiguration      `yaml:"api"`
	Lnbits   LnbitsConfiguration   `yaml:"lnbits"`
	Database DatabaseConfiguration `yaml:"database"`
	Proxy    *SocksConfiguration   `yaml:"socks_proxy,omitempty"`
}{}

type PosConfiguration struct {
	ServerUrl           string `yaml:"server_url" default:"http://localhost:8080"`
	PollIntervalSeconds int    `yaml:"poll_interval_seconds" default:"2"`
	PollDeadlineMinutes int    `yaml:"poll_deadline_minutes" default:"10"`
}

type ApiConfiguration struct {
	Host      string `yaml:"host" default:"0.0.0.0:8080"`
	PublicUrl string `yaml:"public_url" default:"http://localhost:8080"`
}

type LnbitsConfiguration struct {
	Url        string `yaml:"url"`
	AdminKey   string `yaml:"admin_key"`
	InvoiceKey string `yaml:"invoice_key"`
}

type DatabaseConfiguration struct {
	DbPath        string `yaml:"db_path" default:"data/satspoint.db"`
	SessionDbPath string `yaml:"session_db_path" default:"data/session.db"`
}

type SocksConfiguration struct {
	Host     string `yaml:"host"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

func init() {
	// the client commands must run without a config file, so only load
	// one when it exists; defaults come from the struct tags
	files := []string{}
	if _, err := os.Stat("config.yaml"); err == nil {
		files = append(files, "config.yaml")
	}
	err := configor.New(&configor.Config{Silent: true}).Load(&Configuration, files...)
	if err != nil {
		panic(err)
	}
	if Configuration.Lnbits.Url != "" {
		Configuration.Lnbits.Url = strings.TrimSuffix(Configuration.Lnbits.Url, "/")
	}
}

// CheckLnbitsConfiguration verifies the settings the server cannot run
// without. Client commands never call this.
func CheckLnbitsConfiguration() {
	if Configuration.Lnbits.Url == "" {
		log.Panicf("please configure a lnbits url")
	}
	if Configuration.Lnbits.InvoiceKey == "" {
		log.Panicf("please configure a lnbits invoice key")
	}
}
