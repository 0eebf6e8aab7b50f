package scheduler

import (
	"time"

	"pharmawaste/messaging"
)

// Sequence definitions. Delays are measured from form submission; the
// welcome email is sent inline at intake and is not part of the
// scheduled sequence.

type EmailStep struct {
	Kind  messaging.EmailKind
	Delay time.Duration
}

var EmailSequence = []EmailStep{
	{messaging.EmailQuoteReady, 2 * time.Hour},
	{messaging.EmailComplianceAlert, 24 * time.Hour},
	{messaging.EmailSuccessStory, 48 * time.Hour},
	{messaging.EmailFinalNotice, 96 * time.Hour},
	{messaging.EmailCompetitorIssues, 7 * 24 * time.Hour},
	{messaging.EmailLastChance, 14 * 24 * time.Hour},
}

type SMSStep struct {
	Kind  messaging.SMSKind
	Delay time.Duration
}

var SMSSequence = []SMSStep{
	{messaging.SMSImmediateResponse, 0},
	{messaging.SMSQuoteReady, 2 * time.Hour},
	{messaging.SMSMissedCallFollowup, 25 * time.Hour},
	{messaging.SMSFinalAttempt, 73 * time.Hour},
}

type CallStep struct {
	Attempt int
	Delay   time.Duration
}

var CallSequence = []CallStep{
	{1, 90 * time.Second},
	{2, 24 * time.Hour},
	{3, 72 * time.Hour},
}

// Optimal calling windows, local time.
const (
	callMorningStart   = 10
	callMorningEnd     = 12
	callAfternoonStart = 14
	callAfternoonEnd   = 16
)

// adjustToCallWindow moves a call due time into the next calling window
// and off weekends. The first attempt is exempt: hot leads get called 90
// seconds after submitting, whatever the clock says.
func adjustToCallWindow(t time.Time, attempt int) time.Time {
	if attempt <= 1 {
		return t
	}

	switch hour := t.Hour(); {
	case hour < callMorningStart:
		t = time.Date(t.Year(), t.Month(), t.Day(), callMorningStart, 0, 0, 0, t.Location())
	case hour >= callMorningEnd && hour < callAfternoonStart:
		t = time.Date(t.Year(), t.Month(), t.Day(), callAfternoonStart, 0, 0, 0, t.Location())
	case hour >= callAfternoonEnd:
		t = time.Date(t.Year(), t.Month(), t.Day()+1, callMorningStart, 0, 0, 0, t.Location())
	}

	switch t.Weekday() {
	case time.Sunday:
		t = t.AddDate(0, 0, 1)
	case time.Saturday:
		t = t.AddDate(0, 0, 2)
	}
	return t
}

// Batch limits per processor tick. Calls are costlier than messages.
const (
	EmailBatchLimit = 20
	SMSBatchLimit   = 20
	CallBatchLimit  = 10
)
