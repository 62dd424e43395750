package export

import (
	"fmt"
	"io"

	"github.com/tinylib/msgp/msgp"

	"github.com/synqronlabs/aroi"
)

// Snapshot field count: id, timestamp, results.
const snapshotFields = 3

// resultFields counts the serialized fields of one ValidationResult.
const resultFields = 7

// WriteSnapshot serializes the report to a compact MessagePack snapshot.
// The summary is not stored; it is recomputed from the results on read.
func (r *Report) WriteSnapshot(w io.Writer) error {
	mw := msgp.NewWriter(w)

	if err := mw.WriteMapHeader(snapshotFields); err != nil {
		return fmt.Errorf("export: writing snapshot header: %w", err)
	}

	if err := mw.WriteString("id"); err != nil {
		return err
	}
	if err := mw.WriteString(r.ID); err != nil {
		return err
	}

	if err := mw.WriteString("timestamp"); err != nil {
		return err
	}
	if err := mw.WriteTime(r.Timestamp); err != nil {
		return err
	}

	if err := mw.WriteString("results"); err != nil {
		return err
	}
	if err := mw.WriteArrayHeader(uint32(len(r.Results))); err != nil {
		return err
	}
	for _, result := range r.Results {
		if err := writeResult(mw, result); err != nil {
			return fmt.Errorf("export: writing result for %s: %w", result.Fingerprint, err)
		}
	}

	return mw.Flush()
}

// ReadSnapshot deserializes a MessagePack snapshot written by WriteSnapshot.
func ReadSnapshot(r io.Reader) (*Report, error) {
	mr := msgp.NewReader(r)

	fields, err := mr.ReadMapHeader()
	if err != nil {
		return nil, fmt.Errorf("export: reading snapshot header: %w", err)
	}

	var report Report
	for i := uint32(0); i < fields; i++ {
		key, err := mr.ReadString()
		if err != nil {
			return nil, fmt.Errorf("export: reading snapshot key: %w", err)
		}

		switch key {
		case "id":
			if report.ID, err = mr.ReadString(); err != nil {
				return nil, err
			}
		case "timestamp":
			if report.Timestamp, err = mr.ReadTime(); err != nil {
				return nil, err
			}
		case "results":
			count, err := mr.ReadArrayHeader()
			if err != nil {
				return nil, err
			}
			report.Results = make([]aroi.ValidationResult, 0, count)
			for j := uint32(0); j < count; j++ {
				result, err := readResult(mr)
				if err != nil {
					return nil, fmt.Errorf("export: reading result: %w", err)
				}
				report.Results = append(report.Results, result)
			}
		default:
			if err := mr.Skip(); err != nil {
				return nil, err
			}
		}
	}

	report.Summary = aroi.Summarize(report.Results)
	return &report, nil
}

func writeResult(mw *msgp.Writer, result aroi.ValidationResult) error {
	if err := mw.WriteMapHeader(resultFields); err != nil {
		return err
	}
	for _, field := range []struct {
		key   string
		value string
	}{
		{"fingerprint", result.Fingerprint},
		{"nickname", result.Nickname},
		{"domain", result.Domain},
		{"proof_type", result.ProofType},
		{"ciissversion", result.CiissVersion},
	} {
		if err := mw.WriteString(field.key); err != nil {
			return err
		}
		if err := mw.WriteString(field.value); err != nil {
			return err
		}
	}
	if err := mw.WriteString("valid"); err != nil {
		return err
	}
	if err := mw.WriteBool(result.Valid); err != nil {
		return err
	}
	if err := mw.WriteString("error"); err != nil {
		return err
	}
	return mw.WriteString(result.Error)
}

func readResult(mr *msgp.Reader) (aroi.ValidationResult, error) {
	var result aroi.ValidationResult

	fields, err := mr.ReadMapHeader()
	if err != nil {
		return result, err
	}

	for i := uint32(0); i < fields; i++ {
		key, err := mr.ReadString()
		if err != nil {
			return result, err
		}

		switch key {
		case "fingerprint":
			result.Fingerprint, err = mr.ReadString()
		case "nickname":
			result.Nickname, err = mr.ReadString()
		case "domain":
			result.Domain, err = mr.ReadString()
		case "proof_type":
			result.ProofType, err = mr.ReadString()
		case "ciissversion":
			result.CiissVersion, err = mr.ReadString()
		case "valid":
			result.Valid, err = mr.ReadBool()
		case "error":
			result.Error, err = mr.ReadString()
		default:
			err = mr.Skip()
		}
		if err != nil {
			return result, err
		}
	}

	return result, nil
}
