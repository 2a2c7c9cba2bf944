package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User represents a user record in the database.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	Phone        string    `gorm:"uniqueIndex;not null;size:30"`
	PasswordHash string    `gorm:"not null"`
	FullName     string
	AvatarURL    string
	Role         string `gorm:"type:varchar(16);not null;default:'user'"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Account represents an account record in the database.
type Account struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key"`
	UserID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	CardNumber string          `gorm:"uniqueIndex;not null;size:30"`
	Balance    decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	Currency   string          `gorm:"type:varchar(3);not null;default:'KZT'"`
	Blocked    bool            `gorm:"not null;default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Transaction represents a persisted ledger entry. Rows are append-only.
type Transaction struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	FromAccountID *uuid.UUID      `gorm:"type:uuid;index"`
	ToAccountID   *uuid.UUID      `gorm:"type:uuid;index"`
	Amount        decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Currency      string          `gorm:"type:varchar(3);not null;default:'KZT'"`
	Category      string          `gorm:"size:255"`
	CreatedAt     time.Time       `gorm:"index"`
}

// Loan represents a loan record in the database.
type Loan struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	UserID         uuid.UUID       `gorm:"type:uuid;index;not null"`
	Amount         decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Currency       string          `gorm:"type:varchar(3);not null;default:'KZT'"`
	TermMonths     int             `gorm:"not null"`
	MonthlyPayment decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Type           string          `gorm:"type:varchar(16);not null;default:'cash'"`
	Active         bool            `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Schedule []LoanSchedule `gorm:"foreignKey:LoanID"`
}

// LoanSchedule represents one installment row of a loan.
type LoanSchedule struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	LoanID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	DueDate   time.Time       `gorm:"index;not null"`
	Amount    decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Currency  string          `gorm:"type:varchar(3);not null;default:'KZT'"`
	Paid      bool            `gorm:"not null;default:false"`
	CreatedAt time.Time
}

// Deposit represents a term-deposit record in the database.
type Deposit struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key"`
	UserID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	Amount     decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Currency   string          `gorm:"type:varchar(3);not null;default:'KZT'"`
	Rate       decimal.Decimal `gorm:"type:numeric(6,4);not null"`
	TermMonths int             `gorm:"not null"`
	Tier       string          `gorm:"type:varchar(16);not null;default:'standard'"`
	StartDate  time.Time       `gorm:"not null"`
	EndDate    time.Time       `gorm:"not null"`
	Active     bool            `gorm:"not null;default:true"`
	UpdatedAt  time.Time
}

// Insurance represents an insurance policy record in the database.
type Insurance struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	UserID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	Type        string          `gorm:"type:varchar(16);not null"`
	Coverage    decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	MonthlyCost decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Currency    string          `gorm:"type:varchar(3);not null;default:'KZT'"`
	TermMonths  int             `gorm:"not null"`
	StartDate   time.Time       `gorm:"not null"`
	EndDate     time.Time       `gorm:"not null"`
	Active      bool            `gorm:"not null;default:true"`
	UpdatedAt   time.Time
}

// Favorite represents a saved payee record in the database.
type Favorite struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID     uuid.UUID `gorm:"type:uuid;index;not null"`
	Name       string    `gorm:"not null;size:100"`
	Value      string    `gorm:"not null;size:100"`
	Type       string    `gorm:"not null;size:30"`
	ColorStart string    `gorm:"size:9"`
	ColorEnd   string    `gorm:"size:9"`
	CreatedAt  time.Time
}

// Models lists every table for AutoMigrate.
func Models() []any {
	return []any{
		&User{}, &Account{}, &Transaction{},
		&Loan{}, &LoanSchedule{},
		&Deposit{}, &Insurance{}, &Favorite{},
	}
}
