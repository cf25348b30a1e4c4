package accounts

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/jpalmerr/livefeed/internal/store"
)

const (
	// Collection is the snapshot collection name for accounts.
	Collection = "users"

	// IDPrefix prefixes every generated account id.
	IDPrefix = "user_"
)

// Account is the stored form of a user account.
type Account struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Salt       []byte `json:"salt"`
	SecretHash []byte `json:"secretHash"`
}

func (a Account) RecordID() string { return a.ID }

// Public is the projection of an [Account] that may cross the directory boundary.
type Public struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewRepository returns the account repository backed by snaps.
func NewRepository(snaps store.Snapshotter, logger *slog.Logger) *store.Repository[Account] {
	return store.New[Account](Collection, IDPrefix, snaps, logger)
}

// Directory manages accounts on top of a record repository.
//
// Directory is safe for concurrent use. Account creation is serialised so that
// the email uniqueness check and the insert form one step.
type Directory struct {
	repo   *store.Repository[Account]
	hasher Hasher
	logger *slog.Logger

	createMu sync.Mutex
}

// NewDirectory creates a [Directory] over repo.
//
// A nil hasher selects [DefaultHasher]; a nil logger selects [slog.Default].
func NewDirectory(repo *store.Repository[Account], hasher Hasher, logger *slog.Logger) *Directory {
	if hasher == nil {
		hasher = DefaultHasher()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{
		repo:   repo,
		hasher: hasher,
		logger: logger.With("component", "accounts"),
	}
}

// PublicProjection strips the secret fields from a.
func PublicProjection(a Account) Public {
	return Public{ID: a.ID, Name: a.Name, Email: a.Email}
}

// FindByEmail returns the account whose email equals email exactly.
func (d *Directory) FindByEmail(email string) (Account, bool) {
	return d.repo.Find(func(a Account) bool { return a.Email == email })
}

// Get returns the public projection of the account with the given id.
func (d *Directory) Get(id string) (Public, bool) {
	a, ok := d.repo.Get(id)
	if !ok {
		return Public{}, false
	}
	return PublicProjection(a), true
}

// List returns every account's public projection in creation order.
func (d *Directory) List() []Public {
	all := d.repo.List()
	slices.Reverse(all)

	out := make([]Public, len(all))
	for i, a := range all {
		out[i] = PublicProjection(a)
	}
	return out
}

// Len returns the number of accounts.
func (d *Directory) Len() int {
	return d.repo.Len()
}

// CreateAccount registers a new account and returns its public projection.
//
// Returns [ErrValidation] if any field is blank after trimming,
// [ErrInvalidEmail] if email has no "@", and [ErrDuplicateEmail] if the email
// is taken. Failed calls leave the directory unchanged. Values are stored as
// given; trimming only decides blankness.
func (d *Directory) CreateAccount(name, email, secret string) (Public, error) {
	if isBlank(name) || isBlank(email) || isBlank(secret) {
		return Public{}, fmt.Errorf("%w: name, email and secret are required", ErrValidation)
	}
	if !strings.Contains(email, "@") {
		return Public{}, ErrInvalidEmail
	}

	salt, hash, err := d.hasher.Hash(secret)
	if err != nil {
		return Public{}, err
	}

	d.createMu.Lock()
	defer d.createMu.Unlock()

	if _, exists := d.FindByEmail(email); exists {
		return Public{}, ErrDuplicateEmail
	}

	acct, err := d.repo.Create(func(id string) Account {
		return Account{
			ID:         id,
			Name:       name,
			Email:      email,
			Salt:       salt,
			SecretHash: hash,
		}
	})
	if err != nil {
		// the account exists in memory; only its durability failed
		d.logger.Warn("account created but not persisted", "id", acct.ID, "error", err)
	}

	d.logger.Info("account created", "id", acct.ID)
	return PublicProjection(acct), nil
}

// Authenticate checks email and secret and returns the matching account's
// public projection.
//
// Returns [ErrValidation] if either field is blank after trimming and
// [ErrInvalidCredentials] if no account matches.
func (d *Directory) Authenticate(email, secret string) (Public, error) {
	if isBlank(email) || isBlank(secret) {
		return Public{}, fmt.Errorf("%w: email and secret are required", ErrValidation)
	}

	acct, ok := d.FindByEmail(email)
	if !ok {
		return Public{}, ErrInvalidCredentials
	}
	if !d.hasher.Verify(secret, acct.Salt, acct.SecretHash) {
		return Public{}, ErrInvalidCredentials
	}

	return PublicProjection(acct), nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
