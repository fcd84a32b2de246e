package seed

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Simplici0/quotedesk/internal/db"
)

const (
	defaultTemplateName  = "Standard Supply & Installation"
	defaultTemplateTax   = "18"
	defaultTemplateNotes = "Prices are exclusive of civil work unless stated otherwise."

	timeLayout = "2006-01-02T15:04:05.000000Z"
)

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
	Dialect       db.Dialect
	Now           time.Time
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

type seeder struct {
	tx      *sql.Tx
	dialect db.Dialect
	now     time.Time
	stats   Stats
}

// Run executes the startup seed in an idempotent way.
func Run(conn *sql.DB, cfg Config) (Stats, error) {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}

	tx, err := conn.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	s := &seeder{tx: tx, dialect: cfg.Dialect, now: cfg.Now.UTC()}

	if err := s.seedAdmin(cfg.AdminEmail, cfg.AdminPassword); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := s.ensureSequence(); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := s.ensureTemplate(); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return s.stats, nil
}

func (s *seeder) q(query string) string {
	return db.Rebind(s.dialect, query)
}

func (s *seeder) exists(query string, args ...any) (bool, error) {
	var n int
	if err := s.tx.QueryRow(s.q(query), args...).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *seeder) seedAdmin(email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}

	exists, err := s.exists(`SELECT COUNT(*) FROM users WHERE email = ?`, email)
	if err != nil {
		return fmt.Errorf("check admin user existence: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	if _, err := s.tx.Exec(s.q(`
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`), uuid.NewString(), email, string(hash), s.now.Format(timeLayout)); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	s.stats.Inserts++
	return nil
}

// ensureSequence opens the quotation counter for the current year.
func (s *seeder) ensureSequence() error {
	year := s.now.Year()
	exists, err := s.exists(`SELECT COUNT(*) FROM quotation_sequences WHERE year = ?`, year)
	if err != nil {
		return fmt.Errorf("check quotation sequence existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := s.tx.Exec(s.q(`INSERT INTO quotation_sequences (year, last_value) VALUES (?, 0)`), year); err != nil {
		return fmt.Errorf("insert quotation sequence: %w", err)
	}
	s.stats.Inserts++
	return nil
}

func (s *seeder) ensureTemplate() error {
	exists, err := s.exists(`SELECT COUNT(*) FROM templates WHERE name = ?`, defaultTemplateName)
	if err != nil {
		return fmt.Errorf("check default template existence: %w", err)
	}
	if exists {
		return nil
	}

	stamp := s.now.Format(timeLayout)
	if _, err := s.tx.Exec(s.q(`
		INSERT INTO templates (id, name, description, line_items, notes, tax_rate, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`), uuid.NewString(), defaultTemplateName, "", "[]", defaultTemplateNotes, defaultTemplateTax, stamp, stamp); err != nil {
		return fmt.Errorf("insert default template: %w", err)
	}
	s.stats.Inserts++
	return nil
}
