package integration

import (
	"net/url"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/dimitrije/taskhub-api/internal/services"
	"github.com/dimitrije/taskhub-api/tests/testutil"
)

// TestMain runs before all tests in this package
func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}

// stack bundles the services wired against one test database
type stack struct {
	db       *testutil.TestDB
	fixtures *testutil.Fixtures
	mail     *recordingNotifier
	users    *services.UserService
	tokens   *services.TokenService
	auth     *services.AuthorizationService
	projects *services.ProjectService
	coupons  *services.CouponService
	joins    *services.JoinRequestService
	tasks    *services.TaskService
	comments *services.CommentService
}

// setupTest starts a database container and wires the services on top of it
func setupTest(t *testing.T) *stack {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := testutil.SetupTestDB(t)
	mail := &recordingNotifier{}

	users := services.NewUserService(tdb.DB, services.NewPasswordHasher(4), mail, "http://localhost:8080", time.Hour)
	auth := services.NewAuthorizationService(tdb.DB)
	projects := services.NewProjectService(tdb.DB, auth, nil)
	coupons := services.NewCouponService(tdb.DB, auth, projects, users)
	tasks := services.NewTaskService(tdb.DB, auth)

	return &stack{
		db:       tdb,
		fixtures: testutil.NewFixtures(tdb.DB),
		mail:     mail,
		users:    users,
		tokens:   services.NewTokenService(tdb.DB),
		auth:     auth,
		projects: projects,
		coupons:  coupons,
		joins:    services.NewJoinRequestService(tdb.DB, auth, coupons, projects, users),
		tasks:    tasks,
		comments: services.NewCommentService(tdb.DB, auth, tasks),
	}
}

type recordingNotifier struct {
	mu   sync.Mutex
	urls map[string]string
}

func (n *recordingNotifier) SendVerification(to, _, verifyURL string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.urls == nil {
		n.urls = make(map[string]string)
	}
	n.urls[to] = verifyURL
}

// tokenFor returns the verification token mailed to the address
func (n *recordingNotifier) tokenFor(t *testing.T, to string) string {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()

	raw, ok := n.urls[to]
	if !ok {
		t.Fatalf("no verification mail sent to %s", to)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("bad verification url %q: %v", raw, err)
	}
	return u.Query().Get("token")
}
