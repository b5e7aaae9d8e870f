package services

import (
	"coursemaster/apperr"
	"coursemaster/payment/paymenttest"
	"coursemaster/testutil"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type sentEmail struct {
	Kind  string
	Email string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentEmail
}

func (n *recordingNotifier) record(kind, email string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentEmail{Kind: kind, Email: email})
}

func (n *recordingNotifier) SendWelcomeEmail(email, name string) { n.record("welcome", email) }

func (n *recordingNotifier) SendEnrollmentEmail(email, name, courseTitle string) {
	n.record("enrollment", email)
}

func (n *recordingNotifier) SendPaymentReceiptEmail(email, name, courseTitle string, amount float64, currency, transactionID string) {
	n.record("receipt", email)
}

func (n *recordingNotifier) count(kind string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	total := 0
	for _, e := range n.sent {
		if e.Kind == kind {
			total++
		}
	}
	return total
}

type testEnv struct {
	db          *gorm.DB
	notifier    *recordingNotifier
	provider    *paymenttest.Fake
	enrollments *EnrollmentService
	payments    *PaymentService
	quizzes     *QuizService
	assignments *AssignmentService
	courses     *CourseService
	batches     *BatchService
	users       *UserService
	analytics   *AnalyticsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	log := testutil.Logger()
	env := &testEnv{db: db, notifier: &recordingNotifier{}, provider: &paymenttest.Fake{}}
	env.enrollments = NewEnrollmentService(db, log, env.notifier)
	env.payments = NewPaymentService(db, log, env.provider, env.enrollments, env.notifier, "BDT")
	env.quizzes = NewQuizService(db, log, env.enrollments)
	env.assignments = NewAssignmentService(db, log, env.enrollments)
	env.courses = NewCourseService(db, log)
	env.batches = NewBatchService(db, log)
	env.users = NewUserService(db, log, env.notifier, 4)
	env.analytics = NewAnalyticsService(db, log)
	return env
}

func requireKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, apperr.KindOf(err), "unexpected error: %v", err)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
