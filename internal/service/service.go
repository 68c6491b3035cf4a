package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Dan9191/bankshot/internal/advisor"
	"github.com/Dan9191/bankshot/internal/analytics"
	"github.com/Dan9191/bankshot/internal/config"
	"github.com/Dan9191/bankshot/internal/generator"
	"github.com/Dan9191/bankshot/internal/models"
	"github.com/Dan9191/bankshot/internal/repository"
	"github.com/Dan9191/bankshot/internal/session"
	"github.com/Dan9191/bankshot/internal/simulation"
	"github.com/sirupsen/logrus"
)

var (
	// ErrChatBusy is returned while a session already has a question in flight
	ErrChatBusy = errors.New("a question is already being answered")
	// ErrEmptyQuestion is returned for blank questions
	ErrEmptyQuestion = errors.New("question is empty")
	// ErrInvalidGoal is returned for goal input that is not a positive number
	ErrInvalidGoal = errors.New("goal must be a positive number")

	errNoCustomer = errors.New("no customer IDs configured")
)

// Service handles business logic
type Service struct {
	backend Backend
	advisor Advisor
	users   repository.Users
	mailer  Mailer
	log     *logrus.Logger
	config  *config.Config

	sessions  *session.Store
	src       generator.Source
	now       func() time.Time
	gen       *generator.Generator
	merger    *Merger
	responder *advisor.Responder
	sim       *simulation.Engine

	merge func(Fetch[models.Account], Fetch[models.RawTransaction], string) *models.FinancialSnapshot
}

// Option customizes a Service
type Option func(*Service)

// WithSource replaces the random source, mainly for deterministic tests.
func WithSource(src generator.Source) Option {
	return func(s *Service) { s.src = src }
}

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithSessions replaces the session store.
func WithSessions(store *session.Store) Option {
	return func(s *Service) { s.sessions = store }
}

// NewService initializes a new service. adv may be nil, in which case every
// question is answered locally.
func NewService(cfg *config.Config, backend Backend, adv Advisor, users repository.Users, mailer Mailer, log *logrus.Logger, opts ...Option) *Service {
	s := &Service{
		backend: backend,
		advisor: adv,
		users:   users,
		mailer:  mailer,
		log:     log,
		config:  cfg,
		src:     generator.NewLockedSource(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sessions == nil {
		s.sessions = session.NewStore()
	}
	s.gen = generator.New(s.src, generator.WithClock(s.now))
	s.merger = NewMerger(s.gen)
	s.responder = advisor.NewResponder(s.src)
	s.sim = simulation.NewEngine(s.src, cfg.GainProbability)
	s.merge = s.merger.Merge
	return s
}

// Sessions returns the live session registry.
func (s *Service) Sessions() *session.Store {
	return s.sessions
}

// Refresh replaces the session's snapshot. Account and transaction data are
// fetched concurrently from a randomly chosen demo customer, and whichever
// arrives is merged with generated data. It reports whether the result was
// installed; a refresh overtaken by a newer one is discarded.
func (s *Service) Refresh(ctx context.Context, sess *session.Session) bool {
	log := s.log.WithField("session", sess.ID)
	seq := sess.BeginRefresh()

	var (
		customerID string
		accounts   Fetch[models.Account]
		txs        Fetch[models.RawTransaction]
	)
	if len(s.config.CustomerIDs) == 0 {
		accounts.Err, txs.Err = errNoCustomer, errNoCustomer
	} else {
		customerID = generator.Pick(s.src, s.config.CustomerIDs)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			accounts.Records, accounts.Err = s.backend.FetchAccounts(ctx, customerID)
		}()
		go func() {
			defer wg.Done()
			txs.Records, txs.Err = s.backend.FetchTransactions(ctx, customerID)
		}()
		wg.Wait()
	}

	if accounts.Err != nil {
		log.Warnf("Account fetch failed, using generated balances: %v", accounts.Err)
	}
	if txs.Err != nil {
		log.Warnf("Transaction fetch failed, using generated transactions: %v", txs.Err)
	}

	snap := s.build(accounts, txs, customerID)
	if !sess.Install(seq, snap, analytics.Derive(snap)) {
		log.Debugf("Discarded stale refresh %d", seq)
		return false
	}
	log.Infof("Snapshot refreshed (%s, customer %q)", snap.Mode, snap.SourceCustomerID)
	return true
}

func (s *Service) build(accounts Fetch[models.Account], txs Fetch[models.RawTransaction], customerID string) (snap *models.FinancialSnapshot) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorf("Snapshot merge failed, using generated snapshot: %v", r)
			snap = s.merger.Fallback()
		}
	}()
	return s.merge(accounts, txs, customerID)
}

// UpdateGoal sets a new savings goal from raw user input. Input that is not
// a positive finite number is rejected with ErrInvalidGoal before anything
// is sent. Otherwise the goal is pushed to the backend and applied locally
// whether or not the push succeeds; a failed push is returned alongside
// applied == true. A session without a snapshot is refreshed first so the
// goal always lands on a complete snapshot.
func (s *Service) UpdateGoal(ctx context.Context, sess *session.Session, input string) (bool, error) {
	goal, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil || math.IsNaN(goal) || math.IsInf(goal, 0) || goal <= 0 {
		return false, ErrInvalidGoal
	}
	if snap, _ := sess.Snapshot(); snap == nil {
		s.Refresh(ctx, sess)
	}

	var remoteErr error
	if err := s.backend.UpdateGoal(ctx, goal); err != nil {
		s.log.WithField("session", sess.ID).Warnf("Goal update failed, keeping it locally: %v", err)
		remoteErr = fmt.Errorf("failed to save goal remotely: %w", err)
	}

	sess.PatchGoal(goal, analytics.Derive)
	return true, remoteErr
}

// Ask appends a question and its answer to the session's chat log. The
// remote advisor's answer is used as-is when it produces one; otherwise the
// local responder answers from the current snapshot.
func (s *Service) Ask(ctx context.Context, sess *session.Session, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}
	if !sess.TryBeginChat() {
		return "", ErrChatBusy
	}
	defer sess.EndChat()

	sess.AppendChat(models.ChatTurn{Text: question, Sender: models.SenderUser, Timestamp: s.now()})

	snap, _ := sess.Snapshot()
	answer := s.askRemote(ctx, sess, question, snap)
	if answer == "" {
		answer = s.responder.Respond(question, snap)
	}

	sess.AppendChat(models.ChatTurn{Text: answer, Sender: models.SenderAssistant, Timestamp: s.now()})
	return answer, nil
}

func (s *Service) askRemote(ctx context.Context, sess *session.Session, question string, snap *models.FinancialSnapshot) string {
	if s.advisor == nil {
		return ""
	}
	answer, err := s.advisor.Ask(ctx, question, snap)
	if err != nil {
		s.log.WithField("session", sess.ID).Warnf("Remote advisor failed, answering locally: %v", err)
		return ""
	}
	if strings.TrimSpace(answer) == "" {
		return ""
	}
	return answer
}

// Simulate runs an investment simulation, remotely when the backend returns
// a usable result and locally otherwise, and stores it on the session.
func (s *Service) Simulate(ctx context.Context, sess *session.Session) models.SimulationResult {
	var result models.SimulationResult
	remote, err := s.backend.RunSimulation(ctx, simulation.DefaultStake)
	switch {
	case err != nil:
		s.log.WithField("session", sess.ID).Warnf("Remote simulation failed, running locally: %v", err)
		result = s.sim.Run()
	case remote == nil || !(remote.Stake > 0) || !(remote.FinalValue > 0) || strings.TrimSpace(remote.Asset) == "":
		s.log.WithField("session", sess.ID).Warn("Remote simulation returned an unusable result, running locally")
		result = s.sim.Run()
	default:
		result = simulation.Complete(*remote)
	}

	sess.SetSimulation(result)
	return result
}

// Dashboard is everything the dashboard view renders
type Dashboard struct {
	State      session.State             `json:"state"`
	View       session.View              `json:"view"`
	Loading    bool                      `json:"loading"`
	Snapshot   *models.FinancialSnapshot `json:"snapshot"`
	Derived    *models.DerivedView       `json:"derived,omitempty"`
	Chat       []models.ChatTurn         `json:"chat"`
	Simulation *models.SimulationResult  `json:"simulation,omitempty"`
	Shares     *analytics.Shares         `json:"shares,omitempty"`
}

// Dashboard collects the session's current presentation state.
func (s *Service) Dashboard(sess *session.Session) Dashboard {
	st := sess.State()
	snap, derived := sess.Snapshot()
	d := Dashboard{
		State:      st,
		View:       session.Route(st),
		Loading:    sess.Loading(),
		Snapshot:   snap,
		Chat:       sess.Chat(),
		Simulation: sess.Simulation(),
	}
	if snap != nil {
		shares := analytics.SharesOf(snap.Spending)
		d.Derived = &derived
		d.Shares = &shares
	}
	return d
}

// CompleteTutorial marks the tutorial as seen for the session.
func (s *Service) CompleteTutorial(sess *session.Session) session.State {
	return sess.Apply(session.CompleteTutorial)
}

// Navigate moves the session to another page.
func (s *Service) Navigate(sess *session.Session, path string) session.State {
	return sess.Apply(func(st session.State) session.State {
		return session.Navigate(st, path)
	})
}
