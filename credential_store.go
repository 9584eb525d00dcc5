package adminauth

import (
	"context"
	"fmt"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
	"github.com/uptrace/bun"
)

// CredentialStore owns local email/password accounts: registration, login
// with lockout, and the password reset token flow.
type CredentialStore struct {
	repo     RepositoryManager
	tokens   TokenMinter
	notifier ResetNotifier
	config   *Config
	logger   Logger

	// writes to one credential are serialized so concurrent logins cannot
	// lose failed-attempt updates
	locks keyedMutex
}

// NewCredentialStore creates a credential store with sane defaults.
func NewCredentialStore(repo RepositoryManager, tokens TokenMinter, config *Config) *CredentialStore {
	if config == nil {
		config = &Config{}
	}
	config.Normalize()

	return &CredentialStore{
		repo:     repo,
		tokens:   tokens,
		notifier: logNotifier{},
		config:   config,
		logger:   defLogger{},
	}
}

// WithLogger overrides the logger used by the store.
func (s *CredentialStore) WithLogger(logger Logger) *CredentialStore {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithNotifier sets the collaborator that delivers reset tokens.
func (s *CredentialStore) WithNotifier(notifier ResetNotifier) *CredentialStore {
	if notifier != nil {
		s.notifier = notifier
	}
	return s
}

// RegisterMessage is the payload for new local accounts.
type RegisterMessage struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
}

func (m RegisterMessage) Type() string { return "credential.register" }

// Validate enforces the registration payload constraints.
func (m RegisterMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&m.Password, validation.Required, validation.Length(6, 200)),
		validation.Field(&m.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&m.LastName, validation.Required, validation.Length(1, 200)),
	)
}

// RegisterResult is returned on successful registration.
type RegisterResult struct {
	User     *User            `json:"user"`
	Person   *Person          `json:"person"`
	Identity *DigitalIdentity `json:"identity"`
}

// LoginResult bundles everything the UI needs after a successful login.
type LoginResult struct {
	User       *User              `json:"user"`
	Person     *Person            `json:"person"`
	Identities []*DigitalIdentity `json:"identities"`
	Token      string             `json:"token"`
}

// ResetRequestResult is deliberately the same for known and unknown emails.
type ResetRequestResult struct {
	Success bool `json:"success"`
}

// Register creates the Person, User, DigitalIdentity, and EmailCredential
// records as one transaction so a crash cannot leave a partial account.
func (s *CredentialStore) Register(ctx context.Context, msg RegisterMessage) (*RegisterResult, error) {
	if err := msg.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid registration payload")
	}

	email := NormalizeEmail(msg.Email)

	phone := ""
	if msg.Phone != "" {
		number, err := phonenumbers.Parse(msg.Phone, "US")
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid phone number")
		}
		phone = phonenumbers.Format(number, phonenumbers.E164)
	}

	salt, err := GenerateSalt()
	if err != nil {
		return nil, err
	}

	hash, err := HashPassword(msg.Password, salt, s.config.Pepper)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	result := &RegisterResult{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := s.repo.Credentials().GetByEmailTx(ctx, tx, email); err == nil {
			return ErrDuplicateEmail
		} else if !repository.IsRecordNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for existing credential")
		}

		user := &User{
			ID:      userIDFor(email),
			Email:   email,
			Enabled: true,
		}
		user, err := s.repo.Users().CreateTx(ctx, tx, user)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}

		person := &Person{
			ID:          uuid.New(),
			UserID:      user.ID,
			FirstName:   msg.FirstName,
			LastName:    msg.LastName,
			DisplayName: DisplayNameFor(msg.FirstName, msg.LastName, email),
			Phone:       phone,
		}
		person, err = s.repo.Persons().CreateTx(ctx, tx, person)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create person")
		}

		identity := &DigitalIdentity{
			ID:             uuid.New(),
			UserID:         user.ID,
			Provider:       LocalProvider,
			ProviderUserID: email,
			IsPrimary:      true,
		}
		identity, err = s.repo.Identities().CreateTx(ctx, tx, identity)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create digital identity")
		}

		now := time.Now()
		credential := &EmailCredential{
			UserID:        user.ID,
			Email:         email,
			PasswordHash:  hash,
			Salt:          salt,
			LastChangedAt: &now,
		}
		if _, err := s.repo.Credentials().CreateTx(ctx, tx, credential); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create email credential")
		}

		result.User = user
		result.Person = person
		result.Identity = identity

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "registration transaction failed")
	}

	s.logger.Debug("registered account %s", print.MaybePrettyJSON(result.User))

	return result, nil
}

// Login verifies the password for the given email, enforcing the lockout
// policy. Unknown emails and wrong passwords are indistinguishable.
func (s *CredentialStore) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = NormalizeEmail(email)

	unlock := s.locks.lock(email)
	defer unlock()

	credential, err := s.repo.Credentials().GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve credential")
	}

	now := time.Now()

	// an active lock rejects the attempt before any hashing happens
	if credential.IsLocked(now) {
		return nil, NewAccountLockedError(*credential.LockedUntil)
	}

	if err := ComparePasswordAndHash(password, credential.Salt, s.config.Pepper, credential.PasswordHash); err != nil {
		credential.FailedAttempts++
		if credential.FailedAttempts >= s.config.MaxLoginAttempts {
			lockedUntil := now.Add(s.config.LockoutPeriod)
			credential.LockedUntil = &lockedUntil
		}

		if err := s.repo.Credentials().Update(ctx, credential); err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to track login attempt")
		}

		return nil, ErrInvalidCredentials
	}

	// counters reset only on a verified-correct password
	credential.FailedAttempts = 0
	credential.LockedUntil = nil
	if err := s.repo.Credentials().Update(ctx, credential); err != nil {
		s.logger.Error("failed to reset login attempts: %v", err)
	}

	user, err := s.repo.Users().GetByID(ctx, credential.UserID.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load user")
	}

	if !user.Enabled {
		return nil, ErrAccountDisabled
	}

	person, err := s.repo.Persons().GetByIdentifier(ctx, user.ID.String())
	if err != nil && !repository.IsRecordNotFound(err) {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load person")
	}

	identities, err := s.repo.Identities().ListByUser(ctx, user.ID.String())
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load identities")
	}

	token, err := s.tokens.Mint(user, identities)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mint session token")
	}

	return &LoginResult{
		User:       user,
		Person:     person,
		Identities: identities,
		Token:      token,
	}, nil
}

// RequestPasswordReset issues a reset token when the email has an account.
// The response is identical either way, so callers cannot enumerate emails.
func (s *CredentialStore) RequestPasswordReset(ctx context.Context, email string) (*ResetRequestResult, error) {
	email = NormalizeEmail(email)
	result := &ResetRequestResult{Success: true}

	if _, err := s.repo.Credentials().GetByEmail(ctx, email); err != nil {
		if repository.IsRecordNotFound(err) {
			s.logger.Debug("password reset requested for unknown email")
			return result, nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve credential")
	}

	token, err := GenerateOpaqueToken(32)
	if err != nil {
		return nil, err
	}

	record := &ResetToken{
		Token:     token,
		Email:     email,
		ExpiresAt: time.Now().Add(s.config.ResetTokenTTL),
	}

	if err := s.repo.ResetTokens().Replace(ctx, record); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store reset token")
	}

	if err := s.notifier.Notify(ctx, email, token); err != nil {
		s.logger.Error("failed to deliver reset token: %v", err)
	}

	return result, nil
}

// ResetPassword redeems a reset token. Tokens are single use; a second
// redemption fails the same way an unknown token does.
func (s *CredentialStore) ResetPassword(ctx context.Context, token, newPassword string) error {
	if newPassword == "" {
		return ErrNoEmptyString
	}

	record, err := s.repo.ResetTokens().GetByToken(ctx, token)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrInvalidResetToken
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve reset token")
	}

	if record.IsExpired(time.Now()) {
		return ErrResetTokenExpired
	}

	unlock := s.locks.lock(record.Email)
	defer unlock()

	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		credential, err := s.repo.Credentials().GetByEmailTx(ctx, tx, record.Email)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrAccountNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve credential")
		}

		hash, err := HashPassword(newPassword, credential.Salt, s.config.Pepper)
		if err != nil {
			return err
		}

		now := time.Now()
		credential.PasswordHash = hash
		credential.FailedAttempts = 0
		credential.LockedUntil = nil
		credential.LastChangedAt = &now

		if err := s.repo.Credentials().UpdateTx(ctx, tx, credential); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update credential")
		}

		if err := s.repo.ResetTokens().DeleteTx(ctx, tx, record.Token); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to consume reset token")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "password reset transaction failed")
	}

	return nil
}

func userIDFor(email string) uuid.UUID {
	if id, err := hashid.NewUUID(email); err == nil {
		return id
	}
	return uuid.New()
}

// keyedMutex serializes operations per credential key.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = map[string]*sync.Mutex{}
	}
	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	k.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

type logNotifier struct{}

func (logNotifier) Notify(ctx context.Context, email, token string) error {
	fmt.Println("====== SENDING EMAIL NOTIFICATION =======")
	fmt.Printf("to: %s\n", email)
	fmt.Printf("link: /password-reset/%s\n", token)
	return nil
}
