package bibliosvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nickmarkin/AAA-Summarizer/core"
	"github.com/nickmarkin/AAA-Summarizer/core/survey"
)

// Best-effort DOI verification against the Crossref REST API. A lookup that
// fails or disagrees only sets the entry's display flag; stored point totals
// never depend on it, and one failed lookup never aborts the rest.

const defaultBaseURL = "https://api.crossref.org"

type CrossrefVerifier struct {
	baseURL string
	client  *http.Client
	logger  core.Logger
}

func NewCrossrefVerifier(logger core.Logger) *CrossrefVerifier {
	return &CrossrefVerifier{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

// NewCrossrefVerifierWithBase is used by tests to point at a stub server.
func NewCrossrefVerifierWithBase(baseURL string, logger core.Logger) *CrossrefVerifier {
	v := NewCrossrefVerifier(logger)
	v.baseURL = strings.TrimRight(baseURL, "/")
	return v
}

type crossrefWork struct {
	Message struct {
		DOI   string   `json:"DOI"`
		Title []string `json:"title"`
	} `json:"message"`
}

// LookupDOI resolves a DOI. A nil error with found=false means the DOI does
// not exist; a non-nil error means the lookup itself failed.
func (v *CrossrefVerifier) LookupDOI(ctx context.Context, doi string) (found bool, err error) {
	doi = strings.TrimSpace(doi)
	if doi == "" {
		return false, nil
	}

	reqURL := fmt.Sprintf("%s/works/%s", v.baseURL, url.PathEscape(doi))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return false, err
	}

	res, err := v.client.Do(req)
	if err != nil {
		return false, err
	}
	defer res.Body.Close() //nolint:errcheck

	switch {
	case res.StatusCode == http.StatusNotFound:
		return false, nil
	case res.StatusCode != http.StatusOK:
		return false, fmt.Errorf("crossref returned status %d", res.StatusCode)
	}

	var work crossrefWork
	if err := json.NewDecoder(res.Body).Decode(&work); err != nil {
		return false, err
	}
	return work.Message.DOI != "", nil
}

// VerifyTree walks publication entries with a DOI and flags those whose
// reported impact factor could not be confirmed. Each lookup is isolated:
// failures are logged and counted, never propagated. The flag is display-only.
func (v *CrossrefVerifier) VerifyTree(ctx context.Context, tree survey.Tree) (checked, unconfirmed int) {
	for cat, subs := range tree {
		for sub, data := range subs {
			for i, e := range data.Entries {
				if e.DOI == "" || e.ImpactFactor == 0 {
					continue
				}
				checked++
				found, err := v.LookupDOI(ctx, e.DOI)
				if err != nil {
					v.logger.Warn(fmt.Sprintf("DOI lookup %q failed: %v", e.DOI, err))
				}
				if err != nil || !found {
					data.Entries[i].IFUnconfirmed = true
					unconfirmed++
				}
			}
			tree[cat][sub] = data
		}
	}
	return checked, unconfirmed
}
