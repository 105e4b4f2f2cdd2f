// Package session owns the authentication step machine and the durable
// session record.
//
// The machine is single-threaded: every transition happens on a discrete
// user or timer event, driven by the owning event loop. Exactly one machine
// exists per running client.
package session

import (
	"context"
	"fmt"

	"github.com/osokin/talkie/internal/errs"
	"github.com/osokin/talkie/internal/model"
	"github.com/osokin/talkie/internal/phone"
	"github.com/osokin/talkie/internal/verify"
)

// AuthAPI is the slice of the identity service the machine needs.
type AuthAPI interface {
	// SendCode asks the service to deliver a verification code to phone.
	SendCode(ctx context.Context, phone string) error
	// VerifyCode checks the code. A nil identity with nil error means the
	// code was accepted but no account exists for the phone yet.
	VerifyCode(ctx context.Context, phone, code string) (*model.Identity, error)
	// CreateProfile allocates the permanent identity for a verified phone.
	CreateProfile(ctx context.Context, phone, nickname, username string) (model.Identity, error)
}

// Machine drives phone -> code -> profile -> authorized.
type Machine struct {
	api   AuthAPI
	store *Store

	step      model.AuthStep
	phone     string // normalized digits, set while in flight
	challenge *verify.Challenge
	identity  *model.Identity

	onCode func(code string)
}

// NewMachine builds the machine, short-circuiting into the authorized step
// when the store holds a complete identity record.
func NewMachine(api AuthAPI, store *Store) *Machine {
	m := &Machine{api: api, store: store, step: model.StepPhone}
	if id, ok := store.Load(); ok {
		m.identity = &id
		m.step = model.StepAuthorized
	}
	return m
}

// SetCodeHandler registers the hook invoked when the active challenge
// completes. The handler is expected to call Verify with the code.
func (m *Machine) SetCodeHandler(fn func(code string)) { m.onCode = fn }

// Step returns the current authentication step.
func (m *Machine) Step() model.AuthStep { return m.step }

// Phone returns the normalized in-flight phone number.
func (m *Machine) Phone() string { return m.phone }

// PhoneDisplay returns the in-flight phone in +7 (XXX) XXX-XX-XX form.
func (m *Machine) PhoneDisplay() string { return phone.Format(m.phone) }

// Challenge returns the active verification challenge, nil outside the
// code step.
func (m *Machine) Challenge() *verify.Challenge { return m.challenge }

// Identity returns the authorized identity.
func (m *Machine) Identity() (model.Identity, bool) {
	if m.identity == nil {
		return model.Identity{}, false
	}
	return *m.identity, true
}

// SubmitPhone validates raw, asks the service to send a code and moves to
// the code step with a fresh challenge. An invalid phone is rejected
// locally and the step does not change.
func (m *Machine) SubmitPhone(ctx context.Context, raw string) error {
	if m.step != model.StepPhone {
		return errs.ErrBadTransition
	}
	if !phone.IsValid(raw) {
		return errs.ErrInvalidPhone
	}
	normalized := phone.Normalize(raw)
	if err := m.api.SendCode(ctx, normalized); err != nil {
		return err
	}
	m.phone = normalized
	m.challenge = verify.New(m.notifyCode)
	m.step = model.StepCode
	return nil
}

// Verify forwards a complete code to the service. A rejected code clears
// the challenge slots and stays in the code step; an accepted code either
// authorizes a known identity or routes to profile setup.
func (m *Machine) Verify(ctx context.Context, code string) error {
	if m.step != model.StepCode {
		return errs.ErrBadTransition
	}
	id, err := m.api.VerifyCode(ctx, m.phone, code)
	if err != nil {
		if m.challenge != nil {
			m.challenge.Reject()
		}
		return err
	}
	m.challenge = nil
	if id == nil {
		m.step = model.StepProfile
		return nil
	}
	return m.authorize(*id)
}

// Resend re-requests a code once the challenge cooldown has elapsed. While
// the cooldown runs it is a no-op. The step never changes.
func (m *Machine) Resend(ctx context.Context) error {
	if m.step != model.StepCode || m.challenge == nil {
		return errs.ErrBadTransition
	}
	if !m.challenge.Resend() {
		return nil
	}
	return m.api.SendCode(ctx, m.phone)
}

// Back abandons code entry, discarding the phone and the challenge.
func (m *Machine) Back() error {
	if m.step != model.StepCode {
		return errs.ErrBadTransition
	}
	m.phone = ""
	m.challenge = nil
	m.step = model.StepPhone
	return nil
}

// CompleteSetup creates the permanent identity for the verified phone.
// Nickname and username are validated locally before any network call; the
// service enforces uniqueness.
func (m *Machine) CompleteSetup(ctx context.Context, nickname, username string) error {
	if m.step != model.StepProfile {
		return errs.ErrBadTransition
	}
	if !model.ValidNickname(nickname) {
		return errs.ErrInvalidNickname
	}
	if !model.ValidUsername(username) {
		return errs.ErrInvalidUsername
	}
	id, err := m.api.CreateProfile(ctx, m.phone, nickname, username)
	if err != nil {
		return err
	}
	return m.authorize(id)
}

// Logout clears the persisted and in-memory identity and returns to the
// phone step.
func (m *Machine) Logout() error {
	if m.step != model.StepAuthorized {
		return errs.ErrBadTransition
	}
	if err := m.store.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	m.identity = nil
	m.phone = ""
	m.step = model.StepPhone
	return nil
}

func (m *Machine) authorize(id model.Identity) error {
	if err := m.store.Save(id); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	m.identity = &id
	m.phone = ""
	m.step = model.StepAuthorized
	return nil
}

func (m *Machine) notifyCode(code string) {
	if m.onCode != nil {
		m.onCode(code)
	}
}
