package canonical

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medchain/internal/domain"
	"medchain/internal/domain/models"
)

const budiJSON = `{"docType":"record","recordId":"RM-1","patientId":"","patientName":"Budi","department":"","symptoms":"Fever","diagnosis":"","treatment":"","doctorName":"","notes":"T=38.5C","isEncrypted":false,"timestamp":1767225600000}`

func budiRecord() *models.Record {
	return &models.Record{
		DocType:     models.DocTypeRecord,
		RecordID:    "RM-1",
		PatientName: "Budi",
		Symptoms:    "Fever",
		Notes:       "T=38.5C",
		Timestamp:   1767225600000,
	}
}

func TestJSON_Canonicalize(t *testing.T) {
	got, err := JSON{}.Canonicalize(budiRecord())
	require.NoError(t, err)
	assert.Equal(t, budiJSON, string(got))
	assert.Equal(t, "4e39958ca092a0cb6844d88707b1e47d9c02cf9f307a975ba892658def1becf1", SHA256{}.Digest(got))
}

func TestJSON_IndependentOfConstructionOrder(t *testing.T) {
	// Same values, assigned in a different order
	r := &models.Record{Timestamp: 1767225600000}
	r.Notes = "T=38.5C"
	r.Symptoms = "Fever"
	r.PatientName = "Budi"
	r.RecordID = "RM-1"
	r.DocType = models.DocTypeRecord

	// Same values, decoded from a document with shuffled keys
	var decoded models.Record
	shuffled := `{"timestamp":1767225600000,"notes":"T=38.5C","isEncrypted":false,"recordId":"RM-1","symptoms":"Fever","patientName":"Budi","docType":"record"}`
	require.NoError(t, json.Unmarshal([]byte(shuffled), &decoded))

	c := JSON{}
	d := SHA256{}
	want, err := c.Canonicalize(budiRecord())
	require.NoError(t, err)

	for _, rec := range []*models.Record{r, &decoded, budiRecord()} {
		got, err := c.Canonicalize(rec)
		require.NoError(t, err)
		assert.Equal(t, d.Digest(want), d.Digest(got))
	}
}

func TestJSON_OptionalAnalysis(t *testing.T) {
	rec := budiRecord()
	summary := "Likely viral fever"
	rec.AIAnalysis = &summary

	got, err := JSON{}.Canonicalize(rec)
	require.NoError(t, err)
	assert.Contains(t, string(got), `"notes":"T=38.5C","aiAnalysis":"Likely viral fever","isEncrypted":false`)

	rec.AIAnalysis = nil
	got, err = JSON{}.Canonicalize(rec)
	require.NoError(t, err)
	assert.NotContains(t, string(got), "aiAnalysis")
}

func TestJSON_NoHTMLEscaping(t *testing.T) {
	rec := budiRecord()
	rec.Notes = "<b>T>38C & rising</b> é"

	got, err := JSON{}.Canonicalize(rec)
	require.NoError(t, err)
	assert.Contains(t, string(got), `"notes":"<b>T>38C & rising</b> é"`)
}

func TestCanonicalize_InvalidUTF8(t *testing.T) {
	cb, err := NewCBOR()
	require.NoError(t, err)

	for _, c := range []interface {
		Canonicalize(*models.Record) ([]byte, error)
	}{JSON{}, cb} {
		rec := budiRecord()
		rec.Diagnosis = string([]byte{0xff, 0xfe})

		_, err := c.Canonicalize(rec)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrEncoding))

		var encErr *domain.EncodingError
		require.True(t, errors.As(err, &encErr))
		assert.Equal(t, models.FieldDiagnosis, encErr.Field)
	}
}

func TestValidate_NilRecord(t *testing.T) {
	assert.True(t, errors.Is(Validate(nil), domain.ErrEncoding))
}

func TestCBOR_Deterministic(t *testing.T) {
	c, err := NewCBOR()
	require.NoError(t, err)

	first, err := c.Canonicalize(budiRecord())
	require.NoError(t, err)
	second, err := c.Canonicalize(budiRecord())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var decoded models.Record
	require.NoError(t, cbor.Unmarshal(first, &decoded))
	assert.Equal(t, *budiRecord(), decoded)
}

func TestNewCanonicalizer(t *testing.T) {
	for _, name := range []string{"", EncodingJSON, EncodingCBOR} {
		c, err := NewCanonicalizer(name)
		require.NoError(t, err)
		assert.NotEmpty(t, c.Name())
	}
	_, err := NewCanonicalizer("xml")
	assert.Error(t, err)
}
