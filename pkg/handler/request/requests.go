package request

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/yumyai/cytoterm/pkg/cytoband"
)

// ConvertRequest holds the query parameters of POST /api/v1/convert.
type ConvertRequest struct {
	Link            bool           `json:"link"`
	Levels          string         `json:"levels"`
	ChromosomeRoots bool           `json:"chromosome_roots"`
	SiblingLinks    bool           `json:"sibling_links"`
	Persist         bool           `json:"persist"`
	Format          ResponseFormat `json:"format"`
}

// ParseConvertRequest reads query values on top of the server defaults.
// Unset parameters keep the default value.
func ParseConvertRequest(q url.Values, defaults cytoband.Options) (ConvertRequest, error) {
	req := ConvertRequest{
		Link:            defaults.LinkAcrossCentromere,
		ChromosomeRoots: defaults.ChromosomeRoots,
		SiblingLinks:    defaults.SiblingLinks,
		Format:          NewResponseFormat(q.Get("format")),
		Levels:          q.Get("levels"),
	}

	flags := []struct {
		name string
		dst  *bool
	}{
		{"link", &req.Link},
		{"chromosome_roots", &req.ChromosomeRoots},
		{"sibling_links", &req.SiblingLinks},
		{"persist", &req.Persist},
	}
	for _, f := range flags {
		v := q.Get(f.name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return req, fmt.Errorf("%s need to be bool-like string", f.name)
		}
		*f.dst = b
	}

	if _, err := cytoband.ParseLinkLevels(req.Levels); err != nil {
		return req, fmt.Errorf("levels: %w", err)
	}
	return req, nil
}

// Options builds pipeline options. Header always comes from the server.
func (r ConvertRequest) Options(defaults cytoband.Options) cytoband.Options {
	opts := cytoband.Options{
		LinkAcrossCentromere: r.Link,
		CentromereLevels:     defaults.CentromereLevels,
		ChromosomeRoots:      r.ChromosomeRoots,
		SiblingLinks:         r.SiblingLinks,
		Header:               defaults.Header,
	}
	if r.Levels != "" {
		// Validated by ParseConvertRequest.
		opts.CentromereLevels, _ = cytoband.ParseLinkLevels(r.Levels)
	}
	return opts
}
