package scanner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"ms-checkin/internal/logger"
	"ms-checkin/internal/models"
)

// State is the machine's position in the scanner flow.
type State int

const (
	StateLogin State = iota
	StateSessionSelect
	StateScanner
)

func (s State) String() string {
	switch s {
	case StateLogin:
		return "login"
	case StateSessionSelect:
		return "session-select"
	case StateScanner:
		return "scanner"
	default:
		return "unknown"
	}
}

// Tab selects between the camera view and the roster search view.
type Tab int

const (
	TabScan Tab = iota
	TabSearch
)

const eventCodeLength = 4

// ErrCodeIncomplete is the client-side gate: no network call happens until
// exactly four digits have been entered.
var ErrCodeIncomplete = errors.New("event code must be exactly 4 digits")

// ErrNotScanning is returned by scan controls outside the scanner state.
var ErrNotScanning = errors.New("no session selected")

// Config carries per-device scanner settings.
type Config struct {
	// ResumeDelay is how long a decode result stays on screen before the
	// scan loop restarts. Pacing only; idempotent check-in is the real
	// guard against duplicate scans.
	ResumeDelay time.Duration
	CheckedBy   string
	DeviceInfo  string
}

// Machine drives one scanner device through login, session selection and
// scanning. Every exit transition releases the camera; an in-flight
// check-in is cancelled when the scan state is left.
type Machine struct {
	mu sync.Mutex

	state      State
	tab        Tab
	codeBuffer string

	event        *models.Event
	eventCode    string
	scannerToken string
	sessions     []models.Session
	session      *models.Session
	roster       []models.Participant
	lastResult   *models.CheckinResponse
	lastErr      error

	stream     Stream
	cancelScan context.CancelFunc
	scanDone   chan struct{}

	camera   Camera
	decoder  Decoder
	access   AccessClient
	checkins CheckinClient
	cfg      Config
	logger   *logger.Logger
}

func NewMachine(camera Camera, decoder Decoder, access AccessClient, checkins CheckinClient, cfg Config, log *logger.Logger) *Machine {
	if cfg.ResumeDelay <= 0 {
		cfg.ResumeDelay = 3 * time.Second
	}
	return &Machine{
		state:    StateLogin,
		camera:   camera,
		decoder:  decoder,
		access:   access,
		checkins: checkins,
		cfg:      cfg,
		logger:   log,
	}
}

// --- login ---

// PressDigit appends one keypad digit to the code buffer.
func (m *Machine) PressDigit(d rune) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d < '0' || d > '9' {
		return
	}
	if len(m.codeBuffer) < eventCodeLength {
		m.codeBuffer += string(d)
	}
}

// ClearCode empties the code buffer.
func (m *Machine) ClearCode() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codeBuffer = ""
}

// CodeBuffer returns the digits entered so far.
func (m *Machine) CodeBuffer() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codeBuffer
}

// Unlock submits the entered code. Short or non-numeric codes are rejected
// locally before any network call. On success the machine moves to
// session-select carrying the event, its sessions and the scanner token; on
// failure it stays in login with the error exposed via LastError.
func (m *Machine) Unlock(ctx context.Context) error {
	m.mu.Lock()
	code := m.codeBuffer
	m.mu.Unlock()

	if len(code) != eventCodeLength {
		m.setError(ErrCodeIncomplete)
		return ErrCodeIncomplete
	}

	data, err := m.access.ValidateEventCode(ctx, code)
	if err != nil {
		m.setError(err)
		return err
	}

	m.mu.Lock()
	m.state = StateSessionSelect
	m.event = data.Event
	m.eventCode = code
	m.sessions = data.Sessions
	m.scannerToken = data.ScannerToken
	m.lastErr = nil
	m.mu.Unlock()

	if m.logger != nil {
		m.logger.LogScanner("unlock", fmt.Sprintf("event %s unlocked, %d sessions", data.Event.ID, len(data.Sessions)))
	}
	return nil
}

// --- session select ---

// SelectSession loads the session roster and enters the scanner state on
// the scan tab. The camera is not started until StartScanning.
func (m *Machine) SelectSession(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	if m.state != StateSessionSelect {
		m.mu.Unlock()
		return fmt.Errorf("cannot select session from state %s", m.state)
	}
	var selected *models.Session
	for i := range m.sessions {
		if m.sessions[i].ID == sessionID {
			selected = &m.sessions[i]
			break
		}
	}
	m.mu.Unlock()

	if selected == nil {
		err := fmt.Errorf("unknown session %s", sessionID)
		m.setError(err)
		return err
	}

	roster, err := m.access.Roster(ctx, sessionID)
	if err != nil {
		m.setError(err)
		return err
	}

	m.mu.Lock()
	m.state = StateScanner
	m.tab = TabScan
	m.session = selected
	m.roster = roster
	m.lastResult = nil
	m.lastErr = nil
	m.mu.Unlock()
	return nil
}

// BackToSessions leaves the scanner state, stopping any active capture.
func (m *Machine) BackToSessions() {
	m.StopScanning()
	m.mu.Lock()
	m.state = StateSessionSelect
	m.session = nil
	m.roster = nil
	m.lastResult = nil
	m.mu.Unlock()
}

// Reset returns to login from any state, stopping any active capture and
// clearing everything.
func (m *Machine) Reset() {
	m.StopScanning()
	m.mu.Lock()
	m.state = StateLogin
	m.codeBuffer = ""
	m.event = nil
	m.eventCode = ""
	m.scannerToken = ""
	m.sessions = nil
	m.session = nil
	m.roster = nil
	m.lastResult = nil
	m.lastErr = nil
	m.mu.Unlock()
}

// --- scanner ---

// SwitchTab flips between scan and search. Leaving the scan tab releases
// the camera.
func (m *Machine) SwitchTab(tab Tab) {
	m.mu.Lock()
	inScanner := m.state == StateScanner
	m.mu.Unlock()
	if !inScanner {
		return
	}
	if tab == TabSearch {
		m.StopScanning()
	}
	m.mu.Lock()
	m.tab = tab
	m.mu.Unlock()
}

// StartScanning acquires the camera and runs the decode loop. Any previous
// capture is stopped first so a client never holds two streams.
func (m *Machine) StartScanning(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateScanner || m.tab != TabScan {
		m.mu.Unlock()
		return ErrNotScanning
	}
	m.mu.Unlock()

	// Stop-before-start discipline.
	m.StopScanning()

	stream, err := m.camera.Acquire(ctx, Constraints{FacingMode: "environment"})
	if err != nil {
		wrapped := fmt.Errorf("%w: %v", ErrCameraUnavailable, err)
		m.setError(wrapped)
		return wrapped
	}

	scanCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	m.mu.Lock()
	m.stream = stream
	m.cancelScan = cancel
	m.scanDone = done
	m.lastErr = nil
	m.mu.Unlock()

	go m.scanLoop(scanCtx, stream, done)
	return nil
}

// StopScanning cancels the decode loop, waits for it to exit and releases
// the camera. Safe to call when nothing is running.
func (m *Machine) StopScanning() {
	m.mu.Lock()
	cancel := m.cancelScan
	done := m.scanDone
	stream := m.stream
	m.cancelScan = nil
	m.scanDone = nil
	m.stream = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	if stream != nil {
		stream.Stop()
		if m.logger != nil {
			m.logger.LogScanner("camera", "capture released")
		}
	}
}

// Scanning reports whether a capture is active.
func (m *Machine) Scanning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stream != nil
}

func (m *Machine) scanLoop(ctx context.Context, stream Stream, done chan struct{}) {
	defer close(done)

	for {
		if ctx.Err() != nil {
			return
		}

		payload, err := m.decoder.Decode(ctx, stream)
		if err != nil {
			if errors.Is(err, ErrNoCode) {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			m.setError(err)
			continue
		}

		m.handleDecode(ctx, payload)

		// Result pause. Cancellation must win over the timer so leaving the
		// scanner never waits out the delay.
		select {
		case <-ctx.Done():
			return
		case <-time.After(m.cfg.ResumeDelay):
		}
	}
}

func (m *Machine) handleDecode(ctx context.Context, payload string) {
	m.mu.Lock()
	if m.session == nil {
		m.mu.Unlock()
		return
	}
	req := models.CheckinRequest{
		QRToken:    payload,
		SessionID:  m.session.ID,
		EventCode:  m.eventCode,
		CheckedBy:  m.cfg.CheckedBy,
		Method:     models.CheckinMethodScan,
		DeviceInfo: m.cfg.DeviceInfo,
	}
	m.mu.Unlock()

	resp, err := m.checkins.CheckIn(ctx, req)
	if err != nil {
		// Every failure is a transient message; the loop resumes and the
		// scanner never wedges.
		m.setError(err)
		return
	}

	m.mu.Lock()
	m.lastResult = resp
	m.lastErr = nil
	if resp.Participant != nil {
		m.updateRosterLocked(resp.Participant)
	}
	m.mu.Unlock()
}

// ManualCheckIn checks in a roster row from the search tab.
func (m *Machine) ManualCheckIn(ctx context.Context, participantID string) (*models.CheckinResponse, error) {
	m.mu.Lock()
	if m.state != StateScanner || m.session == nil {
		m.mu.Unlock()
		return nil, ErrNotScanning
	}
	req := models.CheckinRequest{
		ParticipantID: participantID,
		SessionID:     m.session.ID,
		EventCode:     m.eventCode,
		CheckedBy:     m.cfg.CheckedBy,
		Method:        models.CheckinMethodManual,
		DeviceInfo:    m.cfg.DeviceInfo,
	}
	m.mu.Unlock()

	resp, err := m.checkins.CheckIn(ctx, req)
	if err != nil {
		m.setError(err)
		return nil, err
	}

	m.mu.Lock()
	m.lastResult = resp
	m.lastErr = nil
	if resp.Participant != nil {
		m.updateRosterLocked(resp.Participant)
	}
	m.mu.Unlock()
	return resp, nil
}

// SearchRoster filters the loaded roster by free text against name, email,
// phone and profession.
func (m *Machine) SearchRoster(query string) []models.Participant {
	m.mu.Lock()
	defer m.mu.Unlock()

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return append([]models.Participant(nil), m.roster...)
	}

	var matches []models.Participant
	for _, p := range m.roster {
		haystack := strings.ToLower(p.Name + " " + p.Email + " " + p.Phone + " " + p.Profession)
		if strings.Contains(haystack, query) {
			matches = append(matches, p)
		}
	}
	return matches
}

func (m *Machine) updateRosterLocked(updated *models.Participant) {
	for i := range m.roster {
		if m.roster[i].ID == updated.ID {
			m.roster[i] = *updated
			return
		}
	}
}

func (m *Machine) setError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

// --- accessors ---

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Machine) CurrentTab() Tab {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tab
}

func (m *Machine) Event() *models.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.event
}

func (m *Machine) Sessions() []models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Session(nil), m.sessions...)
}

func (m *Machine) Session() *models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

func (m *Machine) ScannerToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scannerToken
}

func (m *Machine) LastResult() *models.CheckinResponse {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastResult
}

func (m *Machine) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}
