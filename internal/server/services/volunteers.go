// Package services contains server-side business logic. This file implements
// VolunteerService, which drives the volunteer account lifecycle: registration,
// email verification, login and profile maintenance.
package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"html/template"
	"sync"
	"time"

	"github.com/dmitrijs2005/volunteerhub/internal/common"
	"github.com/dmitrijs2005/volunteerhub/internal/cryptox"
	"github.com/dmitrijs2005/volunteerhub/internal/dbx"
	"github.com/dmitrijs2005/volunteerhub/internal/logging"
	"github.com/dmitrijs2005/volunteerhub/internal/server/auth"
	"github.com/dmitrijs2005/volunteerhub/internal/server/config"
	"github.com/dmitrijs2005/volunteerhub/internal/server/mailer"
	"github.com/dmitrijs2005/volunteerhub/internal/server/models"
	"github.com/dmitrijs2005/volunteerhub/internal/server/repositories/repomanager"
)

// Messages returned to callers on success.
const (
	MsgRegistered     = "Please check your inbox/spam to confirm your account."
	MsgVerified       = "Verification complete. Proceed to login."
	MsgDeleted        = "volunteer successfully deleted"
	MsgAllDeleted     = "all volunteers deleted"
	msgInternal       = "internal error"
	msgEmailTaken     = "volunteer with this email already exists"
	msgNoAccount      = "user not found. Create an account to continue"
	msgNotFound       = "volunteer not found"
	msgNotVerified    = "volunteer not verified. Check your inbox/spam folder for verification link."
	msgWrongPassword  = "password is incorrect"
	verificationTitle = "Email verification"
)

var verificationTemplate = template.Must(template.New("verification").Parse(
	`<p>Hi {{.FirstName}},</p>
<p>Confirm your account by clicking the link below</p>
<p><a href="{{.Link}}">Click here to continue</a></p>
<p>You are receiving this mail because you signed up on our platform, <b>Volunteer Africa Network</b>. Ignore this message if you did not take this action.</p>
`))

// Session is the result of a successful login. It serializes as the volunteer
// record with an extra accessToken field.
type Session struct {
	AccessToken string `json:"accessToken"`
	*models.Volunteer
}

// VolunteerService orchestrates the repository, password hasher, token
// issuers and mail sender. It holds no per-volunteer state of its own.
type VolunteerService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	sender                      mailer.Sender
	logger                      logging.Logger
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	bcryptCost                  int
	baseURL                     string
	mailFrom                    string
	mailTimeout                 time.Duration

	dispatches sync.WaitGroup
}

// NewVolunteerService constructs a VolunteerService using repositories and server config.
func NewVolunteerService(db *sql.DB, m repomanager.RepositoryManager, sender mailer.Sender, l logging.Logger, cfg *config.Config) *VolunteerService {
	return &VolunteerService{
		db:                          db,
		repomanager:                 m,
		sender:                      sender,
		logger:                      l.With("module", "volunteer_service"),
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		bcryptCost:                  cfg.BcryptCost,
		baseURL:                     cfg.BaseURL,
		mailFrom:                    cfg.MailFrom,
		mailTimeout:                 cfg.MailTimeout,
	}
}

// List returns every volunteer ordered by creation time.
func (s *VolunteerService) List(ctx context.Context) ([]*models.Volunteer, error) {
	list, err := s.repomanager.Volunteers(s.db).List(ctx)
	if err != nil {
		return nil, s.internal(ctx, "list", err)
	}
	return list, nil
}

// Get returns the volunteer with the given id, or nil without error when
// there is none.
func (s *VolunteerService) Get(ctx context.Context, id string) (*models.Volunteer, error) {
	v, err := s.repomanager.Volunteers(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, s.internal(ctx, "get", err)
	}
	return v, nil
}

// Register creates an unverified volunteer and sends the verification email
// in the background. The returned record is for logging; callers reply with
// MsgRegistered.
func (s *VolunteerService) Register(ctx context.Context, reg models.Registration) (*models.Volunteer, error) {
	reg.Email = models.NormalizeEmail(reg.Email)

	if err := reg.Validate(); err != nil {
		return nil, common.NewServiceError(common.ErrorValidation, err.Error())
	}

	repo := s.repomanager.Volunteers(s.db)

	_, err := repo.GetByEmail(ctx, reg.Email)
	switch {
	case err == nil:
		return nil, common.NewServiceError(common.ErrorAlreadyExists, msgEmailTaken)
	case !errors.Is(err, common.ErrorNotFound):
		return nil, s.internal(ctx, "register lookup", err)
	}

	hash, err := cryptox.HashPassword(reg.Password, s.bcryptCost)
	if err != nil {
		return nil, s.internal(ctx, "hash password", err)
	}

	token, err := common.MakeRandHexString(common.VerificationTokenSize)
	if err != nil {
		return nil, s.internal(ctx, "verification token", err)
	}

	dob, err := models.ParseDate(reg.DOB)
	if err != nil {
		return nil, common.NewServiceError(common.ErrorValidation, `"DOB" must be a valid date (YYYY-MM-DD)`)
	}

	interests := reg.Interests
	if interests == nil {
		interests = []string{}
	}

	v, err := repo.Create(ctx, &models.Volunteer{
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		Email:        reg.Email,
		Telephone:    reg.Telephone,
		PasswordHash: hash,
		Bio:          reg.Bio,
		Interests:    interests,
		DOB:          dob,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.NewServiceError(common.ErrorAlreadyExists, msgEmailTaken)
		}
		return nil, s.internal(ctx, "register create", err)
	}

	s.logger.Info(ctx, "volunteer registered", "id", v.ID, "email", v.Email)
	s.dispatchVerification(ctx, v, token)

	return v, nil
}

// VerificationLink builds the link mailed to a new volunteer.
func (s *VolunteerService) VerificationLink(id, token string) string {
	return s.baseURL + "/volunteer/" + id + "/verify/" + token
}

// dispatchVerification mails the verification link on a tracked goroutine.
// Failures are logged only.
func (s *VolunteerService) dispatchVerification(ctx context.Context, v *models.Volunteer, token string) {
	var body bytes.Buffer
	err := verificationTemplate.Execute(&body, struct {
		FirstName string
		Link      string
	}{v.FirstName, s.VerificationLink(v.ID, token)})
	if err != nil {
		s.logger.Error(ctx, "rendering verification email", "id", v.ID, "error", err)
		return
	}

	msg := mailer.Message{
		From:    s.mailFrom,
		To:      v.Email,
		Subject: verificationTitle,
		HTML:    body.String(),
	}

	sendCtx := context.WithoutCancel(ctx)

	s.dispatches.Add(1)
	go func() {
		defer s.dispatches.Done()

		ctx, cancel := context.WithTimeout(sendCtx, s.mailTimeout)
		defer cancel()

		if err := s.sender.Send(ctx, msg); err != nil {
			s.logger.Warn(ctx, "verification email not sent", "id", v.ID, "error", err)
			return
		}
		s.logger.Info(ctx, "verification email sent", "id", v.ID)
	}()
}

// Wait blocks until every background email dispatch has finished.
func (s *VolunteerService) Wait() {
	s.dispatches.Wait()
}

// Verify marks the volunteer as verified. The token is accepted as is.
// Verifying an already verified volunteer succeeds.
func (s *VolunteerService) Verify(ctx context.Context, id, token string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Volunteers(tx)

		v, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if v.IsVerify {
			return nil
		}
		return repo.SetVerified(ctx, id)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NewServiceError(common.ErrorNotFound, msgNoAccount)
		}
		return s.internal(ctx, "verify", err)
	}

	s.logger.Info(ctx, "volunteer verified", "id", id)
	return nil
}

// Login checks credentials of a verified volunteer and issues a session token.
// The password is only compared once the account is known to be verified.
func (s *VolunteerService) Login(ctx context.Context, email, password string) (*Session, error) {
	v, err := s.repomanager.Volunteers(s.db).GetByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewServiceError(common.ErrorNotFound, msgNotFound)
		}
		return nil, s.internal(ctx, "login lookup", err)
	}

	if !v.IsVerify {
		return nil, common.NewServiceError(common.ErrorValidation, msgNotVerified)
	}

	ok, err := cryptox.ComparePassword(password, v.PasswordHash)
	if err != nil {
		return nil, s.internal(ctx, "compare password", err)
	}
	if !ok {
		return nil, common.NewServiceError(common.ErrorValidation, msgWrongPassword)
	}

	token, err := auth.GenerateToken(auth.Claims{
		ID:        v.ID,
		FirstName: v.FirstName,
		LastName:  v.LastName,
		Email:     v.Email,
		Telephone: v.Telephone,
		DOB:       v.DOB.String(),
		Bio:       v.Bio,
	}, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, s.internal(ctx, "session token", err)
	}

	return &Session{AccessToken: token, Volunteer: v}, nil
}

// Update applies patch to the volunteer and returns the stored result.
func (s *VolunteerService) Update(ctx context.Context, id string, patch models.VolunteerPatch) (*models.Volunteer, error) {
	if patch.Email != nil {
		normalized := models.NormalizeEmail(*patch.Email)
		patch.Email = &normalized
	}

	var updated *models.Volunteer
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Volunteers(tx)

		current, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if patch.IsEmpty() {
			updated = current
			return nil
		}

		updated, err = repo.Update(ctx, id, patch)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			return nil, common.NewServiceError(common.ErrorNotFound, msgNotFound)
		case errors.Is(err, common.ErrorAlreadyExists):
			return nil, common.NewServiceError(common.ErrorAlreadyExists, msgEmailTaken)
		}
		return nil, s.internal(ctx, "update", err)
	}

	return updated, nil
}

// Delete removes the volunteer permanently.
func (s *VolunteerService) Delete(ctx context.Context, id string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Volunteers(tx)
		if _, err := repo.GetByID(ctx, id); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NewServiceError(common.ErrorNotFound, msgNotFound)
		}
		return s.internal(ctx, "delete", err)
	}

	s.logger.Info(ctx, "volunteer deleted", "id", id)
	return nil
}

// DeleteAll removes every volunteer.
func (s *VolunteerService) DeleteAll(ctx context.Context) error {
	n, err := s.repomanager.Volunteers(s.db).DeleteAll(ctx)
	if err != nil {
		return s.internal(ctx, "delete all", err)
	}

	s.logger.Info(ctx, "all volunteers deleted", "count", n)
	return nil
}

func (s *VolunteerService) internal(ctx context.Context, op string, err error) error {
	s.logger.Error(ctx, "volunteer service failure", "op", op, "error", err)
	return common.NewServiceError(common.ErrorInternal, msgInternal)
}
