package auth

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/config"
	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/db"
	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/models"
	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/reputation"
	"gorm.io/gorm"
)

// fakeResolver returns a canned verdict per IP; unlisted IPs resolve to
// the clean unknown verdict, same as a total source outage.
type fakeResolver struct {
	verdicts map[string]reputation.Verdict
}

func (f *fakeResolver) Resolve(_ context.Context, ip string) reputation.Verdict {
	return f.verdicts[ip]
}

// captureMailer records every token it is asked to send.
type captureMailer struct {
	tokens []string
	fail   bool
}

func (m *captureMailer) SendVerificationEmail(_ context.Context, _, _, token, _ string) error {
	if m.fail {
		return fmt.Errorf("smtp unavailable")
	}
	m.tokens = append(m.tokens, token)
	return nil
}

func (m *captureMailer) lastToken(t *testing.T) string {
	t.Helper()
	if len(m.tokens) == 0 {
		t.Fatalf("no verification mail was sent")
	}
	return m.tokens[len(m.tokens)-1]
}

type testEnv struct {
	svc      *Service
	conn     *gorm.DB
	resolver *fakeResolver
	mail     *captureMailer
	now      time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := db.Open(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	env := &testEnv{
		conn:     conn,
		resolver: &fakeResolver{verdicts: map[string]reputation.Verdict{}},
		mail:     &captureMailer{},
		now:      time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
	}
	env.svc = NewService(conn, env.resolver, env.mail,
		config.JWTConfig{Secret: "test-secret", Expiry: time.Hour},
		"http://localhost:8318",
		func() time.Time { return env.now })
	return env
}

func (e *testEnv) markVPN(ip string) {
	e.resolver.verdicts[ip] = reputation.Verdict{IsVPN: true, Provider: "ExampleVPN"}
}

func (e *testEnv) markProxy(ip string) {
	e.resolver.verdicts[ip] = reputation.Verdict{IsProxy: true, Provider: "open proxy"}
}

func (e *testEnv) markMetered(ip string) {
	e.resolver.verdicts[ip] = reputation.Verdict{
		IsVPN: true, IsMetered: true,
		Provider: "Carrier", ConnectionType: "mobile",
	}
}

func validRegistration(ip string) RegisterInput {
	return RegisterInput{
		Email:       "a@x.com",
		Password:    "secret1",
		Username:    "alice",
		DateOfBirth: "02/08/1999",
		IP:          ip,
		UserAgent:   "test-agent",
	}
}

// register runs a registration that must succeed.
func (e *testEnv) register(t *testing.T, in RegisterInput) *RegistrationResult {
	t.Helper()
	result, rej, err := e.svc.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if rej != nil {
		t.Fatalf("register rejected: %+v", rej)
	}
	return result
}

// registerVerified registers and consumes the verification token.
func (e *testEnv) registerVerified(t *testing.T, in RegisterInput) *RegistrationResult {
	t.Helper()
	result := e.register(t, in)
	rej, err := e.svc.Verify(context.Background(), e.mail.lastToken(t))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if rej != nil {
		t.Fatalf("verify rejected: %+v", rej)
	}
	return result
}

func (e *testEnv) userByID(t *testing.T, id uint64) *models.User {
	t.Helper()
	var user models.User
	if err := e.conn.First(&user, id).Error; err != nil {
		t.Fatalf("load user %d: %v", id, err)
	}
	return &user
}

func expectRejection(t *testing.T, rej *Rejection, err error, code string) *Rejection {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rej == nil {
		t.Fatalf("expected rejection %q, got success", code)
	}
	if rej.Code != code {
		t.Fatalf("expected code %q, got %q (%s)", code, rej.Code, rej.Message)
	}
	return rej
}
