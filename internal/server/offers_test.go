package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscore/internal/model"
)

const offerBody = `{
	"name": "AI Outreach Automation",
	"value_props": ["24/7 outreach", "6x more meetings"],
	"ideal_use_cases": ["B2B SaaS", "Sales Tech"]
}`

func TestCreateOffer(t *testing.T) {
	h, _ := newTestServer(t, &stubRunner{})

	rec := doJSON(t, h, http.MethodPost, "/api/offer", offerBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	var offer model.Offer
	decodeBody(t, rec, &offer)
	assert.NotEmpty(t, offer.ID)
	assert.Equal(t, "AI Outreach Automation", offer.Name)
	assert.Equal(t, []string{"24/7 outreach", "6x more meetings"}, offer.ValueProps)
	assert.Equal(t, []string{"B2B SaaS", "Sales Tech"}, offer.IdealUseCases)
}

func TestCreateOffer_BlankName(t *testing.T) {
	h, _ := newTestServer(t, &stubRunner{})

	rec := doJSON(t, h, http.MethodPost, "/api/offer", `{"name": "  "}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "name is required", body["error"])
}

func TestCreateOffer_InvalidBody(t *testing.T) {
	h, _ := newTestServer(t, &stubRunner{})

	rec := doJSON(t, h, http.MethodPost, "/api/offer", `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListOffers_EmptyIsArray(t *testing.T) {
	h, _ := newTestServer(t, &stubRunner{})

	rec := doJSON(t, h, http.MethodGet, "/api/offer", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestGetOffer(t *testing.T) {
	h, _ := newTestServer(t, &stubRunner{})

	rec := doJSON(t, h, http.MethodPost, "/api/offer", offerBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created model.Offer
	decodeBody(t, rec, &created)

	rec = doJSON(t, h, http.MethodGet, "/api/offer/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched model.Offer
	decodeBody(t, rec, &fetched)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, created.Name, fetched.Name)
}

func TestGetOffer_NotFound(t *testing.T) {
	h, _ := newTestServer(t, &stubRunner{})

	rec := doJSON(t, h, http.MethodGet, "/api/offer/3f0c9a3e-0000-0000-0000-000000000000", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "offer not found", body["error"])
}

func TestUpdateOffer(t *testing.T) {
	h, _ := newTestServer(t, &stubRunner{})

	rec := doJSON(t, h, http.MethodPost, "/api/offer", offerBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created model.Offer
	decodeBody(t, rec, &created)

	update := `{"name": "AI Outreach Automation v2", "value_props": ["faster ramp"], "ideal_use_cases": ["B2B SaaS"]}`
	rec = doJSON(t, h, http.MethodPut, "/api/offer/"+created.ID, update)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated model.Offer
	decodeBody(t, rec, &updated)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "AI Outreach Automation v2", updated.Name)
	assert.Equal(t, []string{"faster ramp"}, updated.ValueProps)
}

func TestUpdateOffer_NotFound(t *testing.T) {
	h, _ := newTestServer(t, &stubRunner{})

	rec := doJSON(t, h, http.MethodPut, "/api/offer/3f0c9a3e-0000-0000-0000-000000000000", offerBody)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteOffer(t *testing.T) {
	h, _ := newTestServer(t, &stubRunner{})

	rec := doJSON(t, h, http.MethodPost, "/api/offer", offerBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created model.Offer
	decodeBody(t, rec, &created)

	rec = doJSON(t, h, http.MethodDelete, "/api/offer/"+created.ID, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/offer/"+created.ID, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteOffer_NotFound(t *testing.T) {
	h, _ := newTestServer(t, &stubRunner{})

	rec := doJSON(t, h, http.MethodDelete, "/api/offer/3f0c9a3e-0000-0000-0000-000000000000", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
