// Package rules evaluates operator-defined JavaScript fraud rules against a
// session record. Each rule is a single expression that yields a verdict
// message, or null to stay silent.
package rules

import (
	"context"
	"fmt"

	"github.com/dop251/goja"

	"github.com/wudi/fraudguard/session"
)

// Rule is a named JavaScript snippet. The script sees a read-only `record`
// object and evaluates to a string verdict or null.
type Rule struct {
	Name   string `json:"name"`
	Script string `json:"script"`
}

// Verdict is one rule's non-null outcome.
type Verdict struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Eval runs each rule against the record in a fresh VM. Evaluation is
// interruptible through ctx; a script error aborts with the failing rule's
// name in the error.
func Eval(ctx context.Context, rec session.Record, rls []Rule) ([]Verdict, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	vm := goja.New()
	if err := vm.Set("record", recordObject(rec)); err != nil {
		return nil, fmt.Errorf("bind record: %w", err)
	}

	var verdicts []Verdict
	for _, rule := range rls {
		val, err := run(ctx, vm, rule.Script)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", rule.Name, err)
		}
		if val == nil {
			continue
		}
		verdicts = append(verdicts, Verdict{Rule: rule.Name, Message: fmt.Sprint(val)})
	}
	return verdicts, nil
}

func run(ctx context.Context, vm *goja.Runtime, script string) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := make(chan struct{})
	defer close(done)
	defer vm.ClearInterrupt()

	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	val, err := vm.RunString(script)
	if err != nil {
		if interruptedErr, ok := err.(*goja.InterruptedError); ok {
			if cause := interruptedErr.Unwrap(); cause != nil {
				return nil, cause
			}
			return nil, context.Canceled
		}
		return nil, err
	}
	return val.Export(), nil
}

// recordObject flattens the session record for scripts. Unset analyses come
// through as null so rules can skip them with `=== null`.
func recordObject(rec session.Record) map[string]interface{} {
	return map[string]interface{}{
		"forgeryScore":   opt(rec.ForgeryScore),
		"signatureScore": opt(rec.SignatureScore),
		"aadhaarText":    opt(rec.AadhaarText),
		"aadhaarNumber":  opt(rec.AadhaarNumber),
		"aadhaarValid":   opt(rec.AadhaarValid),
		"panText":        opt(rec.PANText),
		"panNumber":      opt(rec.PANNumber),
		"panValid":       opt(rec.PANValid),
		"faceDistance":   opt(rec.FaceDistance),
		"faceVerified":   opt(rec.FaceVerified),
		"fraudCount":     opt(rec.FraudCount),
		"fraudThreshold": opt(rec.FraudThreshold),
	}
}

func opt[T any](p *T) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

// DefaultRules reproduces the dashboard's built-in verdicts.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name: "document-forgery",
			Script: `record.forgeryScore === null ? null :
				record.forgeryScore > 0.9 ? "No forgery detected." :
				record.forgeryScore > 0.6 ? "Minor differences detected." :
				"High chance of forgery."`,
		},
		{
			Name: "signature",
			Script: `record.signatureScore === null ? null :
				record.signatureScore > 0.85 ? "Signatures appear genuine." :
				record.signatureScore > 0.6 ? "Partial match - suspicious." :
				"Signatures likely forged."`,
		},
		{
			Name: "aadhaar",
			Script: `record.aadhaarText === null ? null :
				record.aadhaarNumber === null ? "No 12-digit Aadhaar number detected." :
				record.aadhaarValid ? "Aadhaar-like number found: " + record.aadhaarNumber :
				"Aadhaar number failed checksum validation."`,
		},
		{
			Name: "pan",
			Script: `record.panText === null ? null :
				record.panNumber === null ? "PAN number not confidently detected." :
				"PAN-like number found: " + record.panNumber`,
		},
		{
			Name: "kyc-face",
			Script: `record.faceVerified === null ? null :
				record.faceVerified ? "Face match verified." : "Face mismatch."`,
		},
		{
			Name: "transaction-outliers",
			Script: `record.fraudCount === null ? null :
				record.fraudCount > 0 ? record.fraudCount + " transactions above the outlier threshold." :
				"No outlier transactions."`,
		},
	}
}
