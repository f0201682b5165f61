package adminctl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/complaintdesk/internal/common"
	"github.com/dmitrijs2005/complaintdesk/internal/server/models"
	"github.com/dmitrijs2005/complaintdesk/internal/server/services"
)

// Registrar creates administrator accounts.
type Registrar interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
}

// Terminal bundles the streams the prompts use.
type Terminal struct {
	In  *bufio.Reader
	Out io.Writer
	// Fd is the descriptor passwords are read from without echo.
	Fd int
}

// AddUser registers an administrator. Email and name are prompted for when
// empty; the password is always read twice from the terminal.
func AddUser(ctx context.Context, r Registrar, t Terminal, email, name string) (*models.User, error) {
	var err error

	if email == "" {
		if email, err = GetSimpleText(t.In, "Enter email", t.Out); err != nil {
			return nil, fmt.Errorf("read email: %w", err)
		}
	}
	if name == "" {
		if name, err = GetSimpleText(t.In, "Enter display name (optional)", t.Out); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read name: %w", err)
		}
	}

	pw1, err := GetPassword(t.Fd, "Enter password", t.Out)
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	pw2, err := GetPassword(t.Fd, "Repeat password", t.Out)
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}

	u, err := r.Register(ctx, services.RegisterInput{
		DisplayName:          name,
		Email:                email,
		Password:             pw1,
		PasswordConfirmation: pw2,
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrPasswordMismatch):
			return nil, errors.New("passwords do not match")
		case errors.Is(err, common.ErrEmailAlreadyRegistered):
			return nil, fmt.Errorf("%s is already registered", email)
		case errors.Is(err, common.ErrValidation):
			return nil, errors.New("email and password are required")
		}
		return nil, err
	}

	fmt.Fprintf(t.Out, "Created administrator %s\n", u.Email)
	return u, nil
}
