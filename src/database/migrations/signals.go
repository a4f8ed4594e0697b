package migrations

import "gorm.io/gorm"

// normalizeSignalSymbols upper-cases symbols written by producers that did not.
func normalizeSignalSymbols(db *gorm.DB) error {
	return db.Exec("UPDATE trade_signals SET symbol = UPPER(symbol) WHERE symbol <> UPPER(symbol)").Error
}

// backfillSignalStrength defaults empty strength labels to moderate.
func backfillSignalStrength(db *gorm.DB) error {
	return db.Exec("UPDATE trade_signals SET strength = 'moderate' WHERE strength IS NULL OR strength = ''").Error
}
