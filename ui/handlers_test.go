package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"seqcode/adapters/memory"
	"seqcode/app"
	"seqcode/domain/core"
	"seqcode/domain/record"
	"seqcode/domain/schema"
	"seqcode/domain/sequence"
)

func newTestApp(t *testing.T) (*App, *memory.Store) {
	t.Helper()

	store := memory.NewStore()
	oracle := memory.NewSchemaOracle(
		&schema.EntitySchema{
			Name: "invoice",
			Attributes: []schema.AttributeSchema{
				{Name: "invoice_number", Type: schema.TypeText},
				{Name: "name", Type: schema.TypeText},
				{Name: "category", Type: schema.TypeOptionSet, OptionValues: []int{1, 2}},
				{Name: "account", Type: schema.TypeLookup, LookupTargets: []string{"account"}},
			},
		},
		&schema.EntitySchema{
			Name: "account",
			Attributes: []schema.AttributeSchema{
				{Name: "region", Type: schema.TypeText},
			},
		},
	)

	generation := app.NewGenerationService(store)
	admin := app.NewAdminService(store, sequence.NewValidator(oracle))
	return NewApp(Config{Port: "0"}, generation, admin, oracle), store
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	a, _ := newTestApp(t)
	rec := doJSON(t, a.Router(), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateDefinitionEndpoint(t *testing.T) {
	a, store := newTestApp(t)

	payload := map[string]interface{}{
		"entity_name":      "invoice",
		"attribute_name":   "invoice_number",
		"trigger_event":    "create",
		"character_length": 4,
		"prefix_template":  "INV-",
	}
	rec := doJSON(t, a.Router(), http.MethodPost, "/api/definitions", payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Definition sequence.Definition     `json:"definition"`
		Advice     *app.RegistrationAdvice `json:"advice"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Definition.ID.IsEmpty())
	assert.Equal(t, "0000", resp.Definition.NextCode)
	require.NotNil(t, resp.Advice)
	assert.True(t, resp.Advice.RegisterHook)

	stored, err := store.Get(context.Background(), resp.Definition.ID)
	require.NoError(t, err)
	assert.Equal(t, "invoice", stored.EntityName)

	// Same target again: conflict
	rec = doJSON(t, a.Router(), http.MethodPost, "/api/definitions", payload)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateDefinitionEndpointValidationFailure(t *testing.T) {
	a, _ := newTestApp(t)

	payload := map[string]interface{}{
		"entity_name":     "invoice",
		"attribute_name":  "invoice_number",
		"trigger_event":   "create",
		"prefix_template": "{no_such_attribute}-",
	}
	rec := doJSON(t, a.Router(), http.MethodPost, "/api/definitions", payload)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordWriteEndpoint(t *testing.T) {
	a, _ := newTestApp(t)

	create := map[string]interface{}{
		"entity_name":      "invoice",
		"attribute_name":   "invoice_number",
		"trigger_event":    "create",
		"character_length": 4,
		"prefix_template":  "{name}-{account.region}-",
		"next_code":        "7",
	}
	rec := doJSON(t, a.Router(), http.MethodPost, "/api/definitions", create)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	write := recordWriteRequest{
		Event: "create",
		Target: record.Record{
			"name":    core.StringValue("Acme"),
			"account": core.ReferenceValue("account", "7"),
		},
		Related: memory.RelatedRecords{
			"account": {"7": record.Record{"region": core.StringValue("West")}},
		},
	}
	rec = doJSON(t, a.Router(), http.MethodPost, "/api/records/invoice/write", write)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp recordWriteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	v, ok := resp.Target.Get("invoice_number")
	require.True(t, ok)
	assert.Equal(t, "Acme-West-0007", v.Str)
}

func TestRecordWriteEndpointRejectsBadEvent(t *testing.T) {
	a, _ := newTestApp(t)

	write := recordWriteRequest{Event: "upsert", Target: record.Record{}}
	rec := doJSON(t, a.Router(), http.MethodPost, "/api/records/invoice/write", write)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordWriteEndpointRequiresTarget(t *testing.T) {
	a, _ := newTestApp(t)

	rec := doJSON(t, a.Router(), http.MethodPost, "/api/records/invoice/write", map[string]interface{}{"event": "create"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreviewEndpointDoesNotAdvance(t *testing.T) {
	a, store := newTestApp(t)

	create := map[string]interface{}{
		"entity_name":      "invoice",
		"attribute_name":   "invoice_number",
		"trigger_event":    "create",
		"character_length": 4,
		"prefix_template":  "INV-",
	}
	rec := doJSON(t, a.Router(), http.MethodPost, "/api/definitions", create)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created createDefinitionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created.Definition.ID

	rec = doJSON(t, a.Router(), http.MethodPost, "/api/definitions/"+id.String()+"/preview", previewRequest{})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp previewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INV-0000", resp.Code)

	stored, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "0000", stored.NextCode)
}

func TestGetDefinitionEndpointNotFound(t *testing.T) {
	a, _ := newTestApp(t)

	rec := doJSON(t, a.Router(), http.MethodGet, "/api/definitions/"+core.NewDefinitionID().String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListDefinitionsEndpointFilters(t *testing.T) {
	a, _ := newTestApp(t)

	for _, attr := range []string{"invoice_number", "name"} {
		rec := doJSON(t, a.Router(), http.MethodPost, "/api/definitions", map[string]interface{}{
			"entity_name":    "invoice",
			"attribute_name": attr,
			"trigger_event":  "create",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := doJSON(t, a.Router(), http.MethodGet, "/api/definitions?entity=invoice&event=create&active=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var defs []sequence.Definition
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &defs))
	assert.Len(t, defs, 2)

	rec = doJSON(t, a.Router(), http.MethodGet, "/api/definitions?event=update", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &defs))
	assert.Empty(t, defs)
}

func TestDeleteDefinitionEndpoint(t *testing.T) {
	a, _ := newTestApp(t)

	rec := doJSON(t, a.Router(), http.MethodPost, "/api/definitions", map[string]interface{}{
		"entity_name":    "invoice",
		"attribute_name": "invoice_number",
		"trigger_event":  "create",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created createDefinitionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, a.Router(), http.MethodDelete, "/api/definitions/"+created.Definition.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var advice app.RegistrationAdvice
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &advice))
	assert.True(t, advice.DeregisterHook)

	rec = doJSON(t, a.Router(), http.MethodGet, "/api/definitions/"+created.Definition.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetEntitySchemaEndpoint(t *testing.T) {
	a, _ := newTestApp(t)

	rec := doJSON(t, a.Router(), http.MethodGet, "/api/schema/invoice", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var entity schema.EntitySchema
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entity))
	assert.Equal(t, "invoice", entity.Name)
	assert.NotEmpty(t, entity.Attributes)

	rec = doJSON(t, a.Router(), http.MethodGet, "/api/schema/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportDefinitionsEndpoint(t *testing.T) {
	a, _ := newTestApp(t)

	rec := doJSON(t, a.Router(), http.MethodPost, "/api/definitions", map[string]interface{}{
		"entity_name":    "invoice",
		"attribute_name": "invoice_number",
		"trigger_event":  "create",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/definitions/export", nil)
	out := httptest.NewRecorder()
	a.Router().ServeHTTP(out, req)
	require.Equal(t, http.StatusOK, out.Code)
	assert.Contains(t, out.Header().Get("Content-Type"), "spreadsheetml")

	f, err := excelize.OpenReader(out.Body)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Definitions")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "invoice", rows[1][2])
}
