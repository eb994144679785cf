// Package csvimport turns uploaded CSV files into bulk recipients and
// contact create requests.
package csvimport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/nimasrn/wa-messenger/internal/model"
	pkgerrors "github.com/pkg/errors"
)

var (
	ErrEmptyFile     = errors.New("CSV file is empty")
	ErrMissingPhone  = errors.New("CSV must contain a phone or number column")
	ErrMissingFields = errors.New("CSV must contain name and phone columns")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type table struct {
	headers []string
	rows    [][]string
}

func read(r io.Reader) (*table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "read CSV")
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "parse CSV")
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return &table{headers: headers, rows: records[1:]}, nil
}

func (t *table) has(col string) bool {
	for _, h := range t.headers {
		if h == col {
			return true
		}
	}
	return false
}

// record maps header to trimmed cell for one row. Missing trailing cells
// read as empty.
func (t *table) record(row []string) map[string]string {
	out := make(map[string]string, len(t.headers))
	for i, h := range t.headers {
		if h == "" {
			continue
		}
		v := ""
		if i < len(row) {
			v = strings.TrimSpace(row[i])
		}
		out[h] = v
	}
	return out
}

func extras(rec map[string]string, known ...string) map[string]string {
	fields := map[string]string{}
	for k, v := range rec {
		if containsKey(known, k) || v == "" {
			continue
		}
		fields[k] = v
	}
	return fields
}

func containsKey(keys []string, k string) bool {
	for _, key := range keys {
		if key == k {
			return true
		}
	}
	return false
}

// ParseRecipients reads bulk targets. The phone comes from the phone column,
// or number when phone is empty; rows without either are skipped. Columns
// other than name, phone, number and email become custom fields of the
// transient contact attached to each recipient.
func ParseRecipients(r io.Reader) ([]model.Recipient, error) {
	t, err := read(r)
	if err != nil {
		return nil, err
	}
	if !t.has("phone") && !t.has("number") {
		return nil, ErrMissingPhone
	}

	recipients := make([]model.Recipient, 0, len(t.rows))
	for _, row := range t.rows {
		rec := t.record(row)
		phone := rec["phone"]
		if phone == "" {
			phone = rec["number"]
		}
		if phone == "" {
			continue
		}
		recipients = append(recipients, model.Recipient{
			Phone: phone,
			Contact: &model.Contact{
				Name:         rec["name"],
				Phone:        phone,
				Email:        rec["email"],
				Tags:         []string{},
				CustomFields: extras(rec, "name", "phone", "number", "email"),
			},
		})
	}
	return recipients, nil
}

// ParseContacts reads an address book export. Rows without a name or a phone
// are skipped. Tags are separated by ';'.
func ParseContacts(r io.Reader) ([]model.ContactCreateRequest, error) {
	t, err := read(r)
	if err != nil {
		return nil, err
	}
	if !t.has("name") || !t.has("phone") {
		return nil, ErrMissingFields
	}

	out := make([]model.ContactCreateRequest, 0, len(t.rows))
	for _, row := range t.rows {
		rec := t.record(row)
		if rec["name"] == "" || rec["phone"] == "" {
			continue
		}
		var tags []string
		if rec["tags"] != "" {
			tags = strings.Split(rec["tags"], ";")
		}
		out = append(out, model.ContactCreateRequest{
			Name:         rec["name"],
			Phone:        rec["phone"],
			Email:        rec["email"],
			Company:      rec["company"],
			Tags:         model.NormalizeTags(tags),
			CustomFields: extras(rec, "name", "phone", "email", "company", "tags"),
		})
	}
	return out, nil
}
