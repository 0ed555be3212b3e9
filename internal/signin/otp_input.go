package signin

import "strings"

// OTPInput models the row of single-digit boxes the admin types the OTP into.
type OTPInput struct {
	digits []string
	focus  int
}

// NewOTPInput creates an input with length boxes (OTPLength when length <= 0).
func NewOTPInput(length int) *OTPInput {
	if length <= 0 {
		length = OTPLength
	}
	return &OTPInput{digits: make([]string, length)}
}

// Len is the number of boxes.
func (in *OTPInput) Len() int { return len(in.digits) }

// Focus is the index of the focused box.
func (in *OTPInput) Focus() int { return in.focus }

// Digits returns a copy of the boxes; empty boxes are "".
func (in *OTPInput) Digits() []string {
	out := make([]string, len(in.digits))
	copy(out, in.digits)
	return out
}

// Enter sets box i to ch. Only a single digit or "" (clearing) is accepted.
// A digit moves focus to the next box.
func (in *OTPInput) Enter(i int, ch string) bool {
	if i < 0 || i >= len(in.digits) {
		return false
	}
	if ch != "" && !allDigits(ch, 1) {
		return false
	}
	in.digits[i] = ch
	in.focus = i
	if ch != "" && i < len(in.digits)-1 {
		in.focus = i + 1
	}
	return true
}

// Backspace clears box i, or moves focus back when box i is already empty.
func (in *OTPInput) Backspace(i int) {
	if i < 0 || i >= len(in.digits) {
		return
	}
	if in.digits[i] != "" {
		in.digits[i] = ""
		in.focus = i
		return
	}
	if i > 0 {
		in.focus = i - 1
	}
}

// Paste replaces the value with the digits of s, clipped to the input length.
// Text without digits is ignored.
func (in *OTPInput) Paste(s string) bool {
	var got []string
	for _, r := range s {
		if r >= '0' && r <= '9' {
			got = append(got, string(r))
			if len(got) == len(in.digits) {
				break
			}
		}
	}
	if len(got) == 0 {
		return false
	}
	for i := range in.digits {
		in.digits[i] = ""
		if i < len(got) {
			in.digits[i] = got[i]
		}
	}
	in.focus = len(got)
	if in.focus >= len(in.digits) {
		in.focus = len(in.digits) - 1
	}
	return true
}

// Value joins the boxes. Empty boxes contribute nothing.
func (in *OTPInput) Value() string {
	return strings.Join(in.digits, "")
}

// Reset clears every box.
func (in *OTPInput) Reset() {
	for i := range in.digits {
		in.digits[i] = ""
	}
	in.focus = 0
}
