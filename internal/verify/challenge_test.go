package verify

import "testing"

func TestSequentialDigitsFireOnce(t *testing.T) {
	var fired []string
	c := New(func(code string) { fired = append(fired, code) })

	for i, d := range []string{"1", "2", "3", "4", "5", "6"} {
		if len(fired) != 0 {
			t.Fatalf("completion fired before slot %d", i)
		}
		c.SetDigit(i, d)
	}
	if len(fired) != 1 || fired[0] != "123456" {
		t.Fatalf("fired = %v, want exactly [123456]", fired)
	}
}

func TestSetDigitRejectsNonDigits(t *testing.T) {
	c := New(nil)
	c.SetDigit(0, "a")
	c.SetDigit(0, "12")
	c.SetDigit(-1, "1")
	c.SetDigit(6, "1")
	if c.Code() != "" || c.Focus() != 0 {
		t.Fatalf("invalid input mutated state: code=%q focus=%d", c.Code(), c.Focus())
	}
}

func TestFocusAdvanceAndBackspace(t *testing.T) {
	c := New(nil)
	c.SetDigit(0, "7")
	if c.Focus() != 1 {
		t.Fatalf("focus = %d, want 1", c.Focus())
	}
	// Last slot does not advance past the end.
	c.SetDigit(5, "9")
	if c.Focus() != 1 {
		t.Fatalf("focus = %d, want 1 after setting slot 5", c.Focus())
	}
	// Backspace on an empty slot retreats focus, without clearing.
	c.Backspace(1)
	if c.Focus() != 0 || c.Digit(0) != "7" {
		t.Fatalf("backspace: focus=%d digit0=%q", c.Focus(), c.Digit(0))
	}
	// Backspace on a filled slot is a no-op.
	c.Backspace(5)
	if c.Digit(5) != "9" {
		t.Fatal("backspace cleared a filled slot")
	}
}

func TestBulkFill(t *testing.T) {
	var fired []string
	c := New(func(code string) { fired = append(fired, code) })

	c.BulkFill("12-34")
	if c.Code() != "1234" || c.Focus() != 4 {
		t.Fatalf("partial paste: code=%q focus=%d", c.Code(), c.Focus())
	}
	if len(fired) != 0 {
		t.Fatal("partial paste fired completion")
	}

	c.BulkFill("code: 987654321")
	if len(fired) != 1 || fired[0] != "987654" {
		t.Fatalf("fired = %v, want [987654]", fired)
	}
	if c.Focus() != 5 {
		t.Fatalf("focus = %d, want 5", c.Focus())
	}
}

func TestResendGatedOnCooldown(t *testing.T) {
	c := New(nil)
	c.SetDigit(0, "1")

	if c.Resend() {
		t.Fatal("resend allowed while cooldown is running")
	}
	if c.Digit(0) != "1" || c.Seconds() != ResendCooldown {
		t.Fatal("no-op resend mutated state")
	}

	for i := 0; i < ResendCooldown; i++ {
		c.Tick()
	}
	if c.Seconds() != 0 || !c.CanResend() {
		t.Fatalf("seconds = %d after full countdown", c.Seconds())
	}
	c.Tick() // stays at zero
	if c.Seconds() != 0 {
		t.Fatal("tick went below zero")
	}

	if !c.Resend() {
		t.Fatal("resend refused at zero")
	}
	if c.Seconds() != ResendCooldown || c.Code() != "" || c.Focus() != 0 {
		t.Fatalf("resend: seconds=%d code=%q focus=%d", c.Seconds(), c.Code(), c.Focus())
	}
}

func TestRejectClearsAndRefocuses(t *testing.T) {
	c := New(nil)
	c.BulkFill("123456")
	c.Reject()
	if c.Code() != "" || c.Focus() != 0 {
		t.Fatalf("reject: code=%q focus=%d", c.Code(), c.Focus())
	}
	if c.Seconds() != ResendCooldown {
		t.Fatal("reject touched the cooldown")
	}
}
