// Package recon queries the Shodan host search API and shapes matches into
// presentable result items.
package recon

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Unknown is the placeholder shown for fields the upstream did not report.
const Unknown = "N/A"

const (
	joinLimit = 3

	mimeJPEG = "image/jpeg"
	mimePNG  = "image/png"
	mimeGIF  = "image/gif"
)

// ErrNoScreenshot marks a match without usable screenshot data. Such matches
// are dropped from browse pools since the card format is image-led.
var ErrNoScreenshot = errors.New("match has no screenshot data")

// Match is the wire shape of one search result.
type Match struct {
	IPStr      string      `json:"ip_str"` //nolint:tagliatelle // upstream field name
	Port       int         `json:"port"`
	Org        string      `json:"org"`
	ISP        string      `json:"isp"`
	ASN        string      `json:"asn"`
	Hostnames  []string    `json:"hostnames"`
	Domains    []string    `json:"domains"`
	Product    string      `json:"product"`
	Transport  string      `json:"transport"`
	Timestamp  string      `json:"timestamp"`
	Location   *Location   `json:"location"`
	Screenshot *Screenshot `json:"screenshot"`
}

// Location is the wire shape of a match's geo block.
type Location struct {
	City        string `json:"city"`
	CountryName string `json:"country_name"` //nolint:tagliatelle // upstream field name
	CountryCode string `json:"country_code"` //nolint:tagliatelle // upstream field name
	RegionCode  string `json:"region_code"`  //nolint:tagliatelle // upstream field name
	RegionName  string `json:"region_name"`  //nolint:tagliatelle // upstream field name
}

// Screenshot is the wire shape of an embedded screenshot.
type Screenshot struct {
	Data string `json:"data"`
	Mime string `json:"mime"`
}

type searchResponse struct {
	Matches []Match `json:"matches"`
	Total   int     `json:"total"`
}

type apiErrorBody struct {
	Error string `json:"error"`
}

// ResultItem is one displayable search result with the screenshot decoded and
// all card fields resolved to display values.
type ResultItem struct {
	Addr      string
	Port      int
	Org       string
	ASN       string
	Country   string
	Region    string
	City      string
	Product   string
	Transport string
	Hostnames string
	Domains   string
	SeenAt    time.Time
	Image     []byte
	ImageExt  string
}

// NewResultItem shapes a wire match into a displayable item. Returns
// ErrNoScreenshot when the match carries no decodable screenshot.
func NewResultItem(m Match) (ResultItem, error) {
	if m.Screenshot == nil || m.Screenshot.Data == "" {
		return ResultItem{}, ErrNoScreenshot
	}

	image, err := base64.StdEncoding.DecodeString(m.Screenshot.Data)
	if err != nil {
		return ResultItem{}, fmt.Errorf("decode screenshot: %w", ErrNoScreenshot)
	}

	item := ResultItem{
		Addr:      m.IPStr,
		Port:      m.Port,
		Org:       orUnknown(firstNonEmpty(m.Org, m.ISP)),
		ASN:       orUnknown(m.ASN),
		Country:   Unknown,
		Region:    Unknown,
		Product:   orUnknown(m.Product),
		Transport: orUnknown(m.Transport),
		Hostnames: joinLimited(m.Hostnames),
		Domains:   joinLimited(m.Domains),
		Image:     image,
		ImageExt:  extFromMime(m.Screenshot.Mime),
	}

	if loc := m.Location; loc != nil {
		item.Country = orUnknown(firstNonEmpty(loc.CountryName, loc.CountryCode))
		item.Region = orUnknown(firstNonEmpty(loc.RegionName, loc.RegionCode))
		item.City = loc.City
	}

	if m.Timestamp != "" {
		if seen, err := dateparse.ParseAny(m.Timestamp); err == nil {
			item.SeenAt = seen
		}
	}

	return item, nil
}

// HasAddr reports whether the item carries a usable host address. Without one
// no external host link can be built.
func (r ResultItem) HasAddr() bool {
	return r.Addr != ""
}

// PortLabel renders the address and port pair for the card header.
func (r ResultItem) PortLabel() string {
	addr := r.Addr
	if addr == "" {
		addr = Unknown
	}

	if r.Port == 0 {
		return addr
	}

	return fmt.Sprintf("%s:%d", addr, r.Port)
}

// SeenLabel renders the last-seen timestamp, or the unknown placeholder.
func (r ResultItem) SeenLabel() string {
	if r.SeenAt.IsZero() {
		return Unknown
	}

	return r.SeenAt.UTC().Format("2006-01-02 15:04 UTC")
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}

	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}

// joinLimited joins up to joinLimit values and summarizes the rest as a
// count, keeping card captions bounded for hosts with many names.
func joinLimited(values []string) string {
	if len(values) == 0 {
		return Unknown
	}

	if len(values) <= joinLimit {
		return strings.Join(values, ", ")
	}

	return fmt.Sprintf("%s +%d more", strings.Join(values[:joinLimit], ", "), len(values)-joinLimit)
}

func extFromMime(mime string) string {
	switch mime {
	case mimePNG:
		return "png"
	case mimeGIF:
		return "gif"
	case mimeJPEG:
		return "jpg"
	default:
		return "jpg"
	}
}
