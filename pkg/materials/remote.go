package materials

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/matzehuels/transfocator/pkg/errors"
	"github.com/matzehuels/transfocator/pkg/httputil"
)

// constantsResponse is the JSON body of GET /v1/constants.
type constantsResponse struct {
	Material string  `json:"material"`
	Density  float64 `json:"density"`
	Energy   float64 `json:"energy"`
	Constants
}

// Remote looks up constants from an HTTP service exposing
// GET {base}/v1/constants?material=&density=&energy=. The tfcalc API
// server implements this endpoint, so one server can feed many clients.
type Remote struct {
	base   string
	client *httputil.Client
}

// NewRemote creates a Remote for baseURL. A nil hc uses the default
// HTTP client.
func NewRemote(baseURL string, hc *http.Client) (*Remote, error) {
	if err := errors.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	return &Remote{
		base:   strings.TrimRight(baseURL, "/"),
		client: httputil.NewClient(hc, nil),
	}, nil
}

// Fingerprint is the service base URL.
func (r *Remote) Fingerprint() string {
	return "remote:" + r.base
}

// Lookup fetches constants, retrying transient failures.
func (r *Remote) Lookup(ctx context.Context, material string, density, energy float64) (Constants, error) {
	q := url.Values{}
	q.Set("material", material)
	q.Set("energy", strconv.FormatFloat(energy, 'g', -1, 64))
	if density > 0 {
		q.Set("density", strconv.FormatFloat(density, 'g', -1, 64))
	}
	endpoint := r.base + "/v1/constants?" + q.Encode()

	var resp constantsResponse
	err := httputil.RetryWithBackoff(ctx, func() error {
		return r.client.Get(ctx, endpoint, &resp)
	})
	switch {
	case stderrors.Is(err, httputil.ErrNotFound):
		return Constants{}, errors.New(errors.ErrCodeLookupFailed, "%s at %g eV: not available from %s", material, energy, r.base)
	case err != nil:
		return Constants{}, errors.Wrap(errors.ErrCodeLookupFailed, err, "%s at %g eV", material, energy)
	}
	if err := resp.Constants.Validate(); err != nil {
		return Constants{}, errors.Wrap(errors.ErrCodeLookupFailed, err, "%s at %g eV", material, energy)
	}
	return resp.Constants, nil
}

var _ Provider = (*Remote)(nil)
