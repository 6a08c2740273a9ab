package database

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"seoulapt/server/internal/models"
)

// TransactionRecord is the stored form of a transaction. Dates are kept as
// YYYY-MM-DD text so they read back without time zone surprises.
type TransactionRecord struct {
	ID           uint    `gorm:"primaryKey"`
	District     string  `gorm:"not null;index:idx_transactions_region"`
	Neighborhood string  `gorm:"not null;index:idx_transactions_region"`
	ContractDate string  `gorm:"size:10;not null;index"`
	YearBuilt    int     `gorm:"not null;default:0"`
	Price        float64 `gorm:"not null"`
	BuildingArea float64 `gorm:"not null"`
	Floor        int     `gorm:"not null"`
}

func (TransactionRecord) TableName() string {
	return "transactions"
}

type Database struct {
	db *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", dbPath, err)
	}

	return &Database{db: db}, nil
}

func (d *Database) GetDB() *gorm.DB {
	return d.db
}

// GetAllTransactions returns every stored transaction in insertion order
func (d *Database) GetAllTransactions() ([]models.Transaction, error) {
	var records []TransactionRecord
	if err := d.db.Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}

	transactions := make([]models.Transaction, 0, len(records))
	for _, r := range records {
		t, err := r.toModel()
		if err != nil {
			return nil, fmt.Errorf("failed to read transaction %d: %w", r.ID, err)
		}
		transactions = append(transactions, t)
	}
	return transactions, nil
}

func (d *Database) CountTransactions() (int64, error) {
	var count int64
	err := d.db.Model(&TransactionRecord{}).Count(&count).Error
	return count, err
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InsertTransactions writes a batch using the given handle, usually a transaction
func InsertTransactions(tx *gorm.DB, batch []models.Transaction) error {
	if len(batch) == 0 {
		return nil
	}

	records := make([]TransactionRecord, len(batch))
	for i, t := range batch {
		records[i] = fromModel(t)
	}
	return tx.Create(&records).Error
}

// ClearTransactions removes every stored transaction
func ClearTransactions(tx *gorm.DB) error {
	return tx.Where("1 = 1").Delete(&TransactionRecord{}).Error
}

func fromModel(t models.Transaction) TransactionRecord {
	return TransactionRecord{
		District:     t.District,
		Neighborhood: t.Neighborhood,
		ContractDate: t.ContractDate.Format(models.DateLayout),
		YearBuilt:    t.YearBuilt,
		Price:        t.Price,
		BuildingArea: t.BuildingArea,
		Floor:        t.Floor,
	}
}

func (r TransactionRecord) toModel() (models.Transaction, error) {
	date, err := time.Parse(models.DateLayout, r.ContractDate)
	if err != nil {
		return models.Transaction{}, err
	}

	return models.Transaction{
		District:     r.District,
		Neighborhood: r.Neighborhood,
		ContractDate: date,
		YearBuilt:    r.YearBuilt,
		Price:        r.Price,
		BuildingArea: r.BuildingArea,
		Floor:        r.Floor,
	}, nil
}
