package attendant

import (
	"context"
	"time"

	"callscreen/internal/screening"
	"callscreen/internal/telephony"
	"callscreen/internal/voicemail"
	"callscreen/pkg/logger"
)

// Screener is the decision surface the attendant consumes.
type Screener interface {
	Classify(ctx context.Context, ev telephony.CallEvent) (screening.CallRecord, error)
}

// MessageTaker records voicemail metadata for diverted calls.
type MessageTaker interface {
	Create(ctx context.Context, callNo int64, audioRef string) (voicemail.Message, error)
}

// Recorder allocates audio payload locations for new recordings.
type Recorder interface {
	NewRef() string
	Path(audioRef string) string
}

// ClassPlan describes how the attendant answers one classification.
type ClassPlan struct {
	// Rings the caller hears before the attendant goes off-hook.
	Rings int
	// Greeting is the audio file played after pick-up; empty plays nothing.
	Greeting string
	// Record takes a message after the greeting. Only meaningful for
	// Blocked/Filtered; Permitted calls ring through to the real line.
	Record bool
}

// Attendant consumes inbound call events from the telephony boundary,
// classifies each one, and answers it according to the class plan.
//
// The call-handling path is deliberately sequential: one goroutine owns the
// modem, so line control never interleaves. Classification failures abort
// handling of that call and are surfaced in the log; they never crash the
// loop for subsequent calls.
type Attendant struct {
	queue    chan telephony.CallEvent
	modem    telephony.Modem
	screener Screener
	messages MessageTaker
	recorder Recorder
	plans    map[screening.Action]ClassPlan

	// ringTimeout is how long one ring cycle may take before the attendant
	// assumes ringing stopped (caller hung up or callee answered). The North
	// American 2-4 cadence fits comfortably inside 7 seconds.
	ringTimeout time.Duration
}

type Options struct {
	QueueSize   int
	RingTimeout time.Duration
	Plans       map[screening.Action]ClassPlan
}

func New(modem telephony.Modem, screener Screener, messages MessageTaker, recorder Recorder, opts Options) *Attendant {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 16
	}
	if opts.RingTimeout <= 0 {
		opts.RingTimeout = 7 * time.Second
	}
	return &Attendant{
		queue:       make(chan telephony.CallEvent, opts.QueueSize),
		modem:       modem,
		screener:    screener,
		messages:    messages,
		recorder:    recorder,
		plans:       opts.Plans,
		ringTimeout: opts.RingTimeout,
	}
}

// HandleCall enqueues an inbound call event. Non-blocking: if the queue is
// full the event is dropped with a log entry rather than stalling the
// telephony boundary.
func (a *Attendant) HandleCall(ev telephony.CallEvent) {
	select {
	case a.queue <- ev:
	default:
		logger.From(context.Background()).Warn("attendant queue full, dropping call event",
			"number", ev.Number)
	}
}

// Run processes call events until ctx is canceled.
func (a *Attendant) Run(ctx context.Context) {
	log := logger.From(ctx)
	log.Info("attendant started")
	for {
		select {
		case <-ctx.Done():
			log.Info("attendant stopped")
			return
		case ev := <-a.queue:
			a.process(ctx, ev)
		}
	}
}

func (a *Attendant) process(ctx context.Context, ev telephony.CallEvent) {
	log := logger.From(ctx)

	rec, err := a.screener.Classify(ctx, ev)
	if err != nil {
		// A lost screening decision is fatal for this call; surface loudly.
		log.Error("call classification failed", "number", ev.Number, "err", err)
		return
	}

	plan, ok := a.plans[rec.Action]
	if !ok {
		return
	}

	if !a.waitForRings(ctx, plan.Rings) {
		log.Debug("ringing stopped before answer", "call_no", rec.CallNo)
		return
	}

	if plan.Greeting == "" && !(plan.Record && rec.Diverted()) {
		return
	}
	a.answer(ctx, rec, plan)
}

// waitForRings lets the phone ring plan.Rings times. Returns false when
// ringing stops early. The event itself counted as the first ring.
func (a *Attendant) waitForRings(ctx context.Context, rings int) bool {
	count := 1
	for count < rings {
		select {
		case <-ctx.Done():
			return false
		case <-a.modem.Rings():
			count++
		case <-time.After(a.ringTimeout):
			return false
		}
	}
	return true
}

func (a *Attendant) answer(ctx context.Context, rec screening.CallRecord, plan ClassPlan) {
	log := logger.From(ctx)

	if err := a.modem.PickUp(ctx); err != nil {
		log.Error("pick up failed", "call_no", rec.CallNo, "err", err)
		return
	}
	defer func() {
		if err := a.modem.HangUp(ctx); err != nil {
			log.Error("hang up failed", "call_no", rec.CallNo, "err", err)
		}
	}()

	if plan.Greeting != "" {
		if err := a.modem.PlayAudio(ctx, plan.Greeting); err != nil {
			log.Error("greeting playback failed", "call_no", rec.CallNo, "err", err)
			return
		}
	}

	if plan.Record && rec.Diverted() {
		ref := a.recorder.NewRef()
		if _, err := a.modem.RecordAudio(ctx, a.recorder.Path(ref)); err != nil {
			log.Error("message recording failed", "call_no", rec.CallNo, "err", err)
			return
		}
		if _, err := a.messages.Create(ctx, rec.CallNo, ref); err != nil {
			log.Error("message store create failed", "call_no", rec.CallNo, "err", err)
		}
	}
}
