package database

func (d *Database) RunMigrations() error {
	if err := d.db.AutoMigrate(&TransactionRecord{}); err != nil {
		return err
	}

	// Trend queries scan by date inside a district
	return d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_transactions_district_date
		ON transactions(district, contract_date);
	`).Error
}
