// Package verify implements the 6-digit one-time code entry lifecycle.
package verify

import "strings"

const (
	// Slots is the number of independently addressable digit positions.
	Slots = 6
	// ResendCooldown is the number of seconds before a resend is allowed.
	ResendCooldown = 60
)

// Challenge holds the code entry state: six digit slots, the focused slot
// and the resend countdown. It is not safe for concurrent use; the owning
// event loop drives it, including the once-per-second Tick.
//
// Completion fires through the callback the instant a mutation leaves all
// six slots non-empty; there is no separate submit action.
type Challenge struct {
	slots      [Slots]string
	focus      int
	seconds    int
	onComplete func(code string)
}

// New creates a fresh challenge with a full cooldown. onComplete receives
// the concatenated 6-digit code and may be nil.
func New(onComplete func(code string)) *Challenge {
	return &Challenge{seconds: ResendCooldown, onComplete: onComplete}
}

// Focus returns the index of the currently focused slot.
func (c *Challenge) Focus() int { return c.focus }

// Seconds returns the remaining resend cooldown.
func (c *Challenge) Seconds() int { return c.seconds }

// Digit returns the content of slot i ("" or a single digit).
func (c *Challenge) Digit(i int) string { return c.slots[i] }

// Code returns the concatenation of all slots.
func (c *Challenge) Code() string { return strings.Join(c.slots[:], "") }

// Complete reports whether every slot holds a digit.
func (c *Challenge) Complete() bool {
	for _, s := range c.slots {
		if s == "" {
			return false
		}
	}
	return true
}

// SetDigit stores v ("" or a single decimal digit) in slot i. Any other
// value is a no-op. Setting a digit advances focus to the next slot; the
// mutation that fills the last empty slot fires completion.
func (c *Challenge) SetDigit(i int, v string) {
	if i < 0 || i >= Slots || !isDigitOrEmpty(v) {
		return
	}
	c.slots[i] = v
	if v != "" && i < Slots-1 {
		c.focus = i + 1
	}
	c.fireIfComplete()
}

// Backspace moves focus to the previous slot when the slot at i is already
// empty. It never clears anything itself; clearing goes through SetDigit.
func (c *Challenge) Backspace(i int) {
	if i > 0 && i < Slots && c.slots[i] == "" {
		c.focus = i - 1
	}
}

// BulkFill handles a paste: non-digits are stripped and the remaining
// characters fill slots left to right starting at 0, at most six. A paste
// that fills every slot focuses the last one and fires completion;
// otherwise focus lands on the first unfilled position.
func (c *Challenge) BulkFill(pasted string) {
	digits := ""
	for _, r := range pasted {
		if r >= '0' && r <= '9' {
			digits += string(r)
		}
	}
	n := len(digits)
	if n > Slots {
		n = Slots
	}
	for i := 0; i < n; i++ {
		c.slots[i] = digits[i : i+1]
	}
	if n >= Slots {
		c.focus = Slots - 1
	} else if n > 0 {
		c.focus = n
	}
	c.fireIfComplete()
}

// Tick decrements the resend countdown by one second while it is positive.
func (c *Challenge) Tick() {
	if c.seconds > 0 {
		c.seconds--
	}
}

// CanResend reports whether the cooldown has elapsed.
func (c *Challenge) CanResend() bool { return c.seconds == 0 }

// Resend resets the cooldown and clears all slots. It is a no-op while the
// cooldown is still running; the return value reports whether it ran.
func (c *Challenge) Resend() bool {
	if c.seconds > 0 {
		return false
	}
	c.reset()
	c.seconds = ResendCooldown
	return true
}

// Reject clears every slot and refocuses slot 0 after the service refused
// the code. The cooldown keeps running.
func (c *Challenge) Reject() { c.reset() }

func (c *Challenge) reset() {
	c.slots = [Slots]string{}
	c.focus = 0
}

func (c *Challenge) fireIfComplete() {
	if c.Complete() && c.onComplete != nil {
		c.onComplete(c.Code())
	}
}

func isDigitOrEmpty(v string) bool {
	return v == "" || (len(v) == 1 && v[0] >= '0' && v[0] <= '9')
}
