package database

import (
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Payment is one invoice tracked by the service. Field names are the
// wire format: records are marshaled as-is into API responses.
type Payment struct {
	ID             string `gorm:"primaryKey"`
	Bolt11         string
	AmountSats     int64
	Memo           string
	SenderPubkey   string `gorm:"index"`
	ReceiverPubkey string `gorm:"index"`
	PaymentHash    string `gorm:"uniqueIndex"`
	Status         string // pending, paid, expired
	CreatedAt      time.Time
	SettledAt      *time.Time
}

type User struct {
	Pubkey    string `gorm:"primaryKey"`
	CreatedAt time.Time
}

func NewDatabase(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	err = db.AutoMigrate(&Payment{}, &User{})
	if err != nil {
		return nil, err
	}
	log.Debugf("[database] opened %s", path)
	return db, nil
}

// EnsureUser records a pubkey the first time it authenticates.
func EnsureUser(db *gorm.DB, pubkey string) {
	user := &User{Pubkey: pubkey}
	tx := db.Where("pubkey = ?", pubkey).FirstOrCreate(user)
	if tx.Error != nil {
		log.Errorf("[database] could not ensure user %s: %v", pubkey, tx.Error)
	}
}

func CreatePayment(db *gorm.DB, payment *Payment) error {
	return db.Create(payment).Error
}

func FindPayment(db *gorm.DB, id string) (*Payment, *gorm.DB) {
	payment := &Payment{}
	tx := db.Where("id = ?", id).First(payment)
	return payment, tx
}

func FindPaymentByHash(db *gorm.DB, paymentHash string) (*Payment, *gorm.DB) {
	payment := &Payment{}
	tx := db.Where("payment_hash = ?", paymentHash).First(payment)
	return payment, tx
}

func MarkPaymentPaid(db *gorm.DB, id string, settledAt time.Time) error {
	return db.Model(&Payment{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": "paid", "settled_at": settledAt}).Error
}

// ListPaymentsByPubkey returns the payments a pubkey sent or received,
// newest first.
func ListPaymentsByPubkey(db *gorm.DB, pubkey string, limit, offset int) ([]Payment, error) {
	var payments []Payment
	tx := db.Where("sender_pubkey = ? OR receiver_pubkey = ?", pubkey, pubkey).
		Order("created_at desc").Limit(limit).Offset(offset).Find(&payments)
	return payments, tx.Error
}
