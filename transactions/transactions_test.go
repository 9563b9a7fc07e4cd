package transactions

import (
	"errors"
	"math"
	"strings"
	"testing"
)

const sampleCSV = `id,description,amount
1,groceries,120.50
2,rent,900.00
3,coffee,4.20
4,wire transfer,250000
5,utilities,85.00
6,fuel,60.75
7,subscription,12.99
8,salary,1200
9,pharmacy,45.00
10,insurance,300.00
11,dining,75.25
12,parking,20.00
13,clothing,150.00
14,travel,500.00
15,internet,95.00
16,snacks,33.30
`

func TestReadCSV(t *testing.T) {
	set, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(set.Rows) != 16 {
		t.Fatalf("rows = %d, want 16", len(set.Rows))
	}
	if len(set.Errors) != 0 {
		t.Fatalf("unexpected row errors: %v", set.Errors)
	}
	if set.Rows[0].Fields["description"] != "groceries" {
		t.Fatalf("unexpected fields: %+v", set.Rows[0].Fields)
	}
	if set.Rows[3].Amount != 250000 {
		t.Fatalf("unexpected amount: %v", set.Rows[3].Amount)
	}
}

func TestReadCSVMissingAmount(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("id,value\n1,2\n"))
	if !errors.Is(err, ErrMissingAmountColumn) {
		t.Fatalf("ReadCSV() error = %v, want ErrMissingAmountColumn", err)
	}
}

func TestReadCSVEmpty(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("")); !errors.Is(err, ErrMissingAmountColumn) {
		t.Fatalf("ReadCSV() error = %v, want ErrMissingAmountColumn", err)
	}
}

func TestReadCSVCaseAndCommas(t *testing.T) {
	set, err := ReadCSV(strings.NewReader("Amount\n\"1,250.00\"\n"))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(set.Rows) != 1 || set.Rows[0].Amount != 1250 {
		t.Fatalf("unexpected rows: %+v", set.Rows)
	}
}

func TestReadCSVCollectsRowErrors(t *testing.T) {
	set, err := ReadCSV(strings.NewReader("amount\n12.5\nnot-a-number\n7\n"))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(set.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(set.Rows))
	}
	if len(set.Errors) != 1 || !strings.Contains(set.Errors[0].Error(), "line 3") {
		t.Fatalf("unexpected errors: %v", set.Errors)
	}
}

func TestDetectOutliers(t *testing.T) {
	set, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	rep := DetectOutliers(set)
	if rep.Count != 1 {
		t.Fatalf("count = %d, want 1", rep.Count)
	}
	if rep.Flagged[0].Amount != 250000 {
		t.Fatalf("flagged wrong row: %+v", rep.Flagged[0])
	}
	if rep.Threshold <= rep.Mean {
		t.Fatalf("threshold %v should exceed mean %v", rep.Threshold, rep.Mean)
	}
	wantThreshold := rep.Mean + 3*rep.StdDev
	if math.Abs(rep.Threshold-wantThreshold) > 1e-9 {
		t.Fatalf("threshold = %v, want %v", rep.Threshold, wantThreshold)
	}
}

func TestDetectOutliersUniform(t *testing.T) {
	set, err := ReadCSV(strings.NewReader("amount\n10\n10\n10\n"))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	rep := DetectOutliers(set)
	if rep.Count != 0 {
		t.Fatalf("count = %d, want 0", rep.Count)
	}
}

func TestDetectOutliersTooFewRows(t *testing.T) {
	rep := DetectOutliers(Set{Rows: []Transaction{{Amount: 5}}})
	if rep.Count != 0 || rep.Threshold != 0 {
		t.Fatalf("unexpected report: %+v", rep)
	}
}
