package model

import (
	"math/big"
	"time"

	"github.com/jackc/pgtype"
	"github.com/shopspring/decimal"
)

// CREATE TABLE "publications" (...) see sql_migrations/001_publications.sql
type Publication struct {
	// Globally unique id, generated with xid
	ID string `gorm:"primaryKey; type: varchar(20); comment:Id of the publication"`

	// Account that signs the transactions
	Signer  string `gorm:"not null; index; comment:Address of the signer"`
	ChainID int64  `gorm:"not null; comment:Chain id the publication was made on"`

	// Draft
	Name        string         `gorm:"not null"`
	Description string         `gorm:"not null"`
	ImageRef    string         `gorm:"not null; comment:Gateway URI of the uploaded image"`
	Price       pgtype.Numeric `gorm:"type: numeric; not null; comment:Listing price in ETH"`

	// Progress
	ContentID   pgtype.Text    `gorm:"comment:Identifier of the uploaded metadata"`
	MetadataURI pgtype.Text    `gorm:"comment:Token URI passed to mint"`
	TokenID     pgtype.Numeric `gorm:"type: numeric; comment:Minted token"`
	Approved    bool           `gorm:"not null; default:false; comment:Marketplace is approved to transfer the token"`
	ItemID      pgtype.Numeric `gorm:"type: numeric; comment:Marketplace item"`
	TxHashes    pgtype.JSONB   `gorm:"type: jsonb; comment:Hashes of the sent transactions, by stage"`

	State PublicationState `gorm:"not null; type: publication_state; index"`

	// Stage that failed, empty unless state is FAILED
	FailedStage pgtype.Text
	Error       pgtype.Text

	// The last transaction's outcome isn't known, it may still get mined
	Unknown bool `gorm:"not null; default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Publication) TableName() string {
	return "publications"
}

func NumericFromDecimal(value decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{
		Int:    value.Coefficient(),
		Exp:    value.Exponent(),
		Status: pgtype.Present,
	}
}

func NumericFromBigInt(value *big.Int) pgtype.Numeric {
	if value == nil {
		return pgtype.Numeric{Status: pgtype.Null}
	}
	return pgtype.Numeric{
		Int:    new(big.Int).Set(value),
		Status: pgtype.Present,
	}
}

// Zero if the value isn't set
func DecimalFromNumeric(value pgtype.Numeric) decimal.Decimal {
	if value.Status != pgtype.Present || value.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(value.Int, value.Exp)
}

// Nil if the value isn't set or isn't an integer
func BigIntFromNumeric(value pgtype.Numeric) *big.Int {
	if value.Status != pgtype.Present || value.Int == nil {
		return nil
	}
	d := DecimalFromNumeric(value)
	if !d.IsInteger() {
		return nil
	}
	return d.BigInt()
}

func TextFromString(value string) pgtype.Text {
	if value == "" {
		return pgtype.Text{Status: pgtype.Null}
	}
	return pgtype.Text{String: value, Status: pgtype.Present}
}

func StringFromText(value pgtype.Text) string {
	if value.Status != pgtype.Present {
		return ""
	}
	return value.String
}
