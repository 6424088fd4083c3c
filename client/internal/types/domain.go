package types

import (
	"fmt"
	"path"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ------------------------------
// Core Domain Entities
// ------------------------------

// Gender is the body model used when fitting an avatar.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Processing states reported by the server. Anything that is not terminal
// is treated as still pending.
const (
	StateReady  = "READY"
	StateFailed = "FAILED"
	StateError  = "ERROR"
)

// Avatar mirrors a remote avatar resource. It has no authority over its own
// state; the server is the source of truth.
type Avatar struct {
	ID     string `mapstructure:"-"`
	Type   string `mapstructure:"-"`
	Name   string `mapstructure:"name"`
	Height int    `mapstructure:"height"`
	Weight int    `mapstructure:"weight"`
	Gender Gender `mapstructure:"gender"`
	State  string `mapstructure:"state"`

	// Attributes holds every server field as received, including those not
	// modelled above.
	Attributes map[string]any `mapstructure:"-"`
	// Assets lists exported files linked through the "included" section.
	Assets []Asset `mapstructure:"-"`
}

// Ready reports whether server-side processing has completed.
func (a *Avatar) Ready() bool { return strings.EqualFold(a.State, StateReady) }

// Failed reports whether server-side processing ended unsuccessfully.
func (a *Avatar) Failed() bool {
	return strings.EqualFold(a.State, StateFailed) || strings.EqualFold(a.State, StateError)
}

// Asset is an exported file (mesh, texture) belonging to an avatar.
type Asset struct {
	ID  string
	URL string
}

// Ext returns the lowercase file extension of the asset URL path, without
// the query string.
func (a Asset) Ext() string {
	p := a.URL
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return strings.ToLower(path.Ext(p))
}

// AvatarFromResource decodes a JSON:API resource object into an Avatar.
func AvatarFromResource(r Resource, included []Resource) (Avatar, error) {
	a := Avatar{ID: r.ID, Type: r.Type, Attributes: r.Attributes}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &a,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Avatar{}, err
	}
	if err := dec.Decode(r.Attributes); err != nil {
		return Avatar{}, fmt.Errorf("decode avatar %s attributes: %w", r.ID, err)
	}
	if a.Name == "" {
		if n, ok := r.Attributes["avatarname"].(string); ok {
			a.Name = n
		}
	}
	a.Assets = AssetsFromIncluded(included)
	return a, nil
}

// AssetsFromIncluded returns the downloadable assets in an "included" list,
// in server order. Entries of other types or without a URL are skipped.
func AssetsFromIncluded(included []Resource) []Asset {
	var assets []Asset
	for _, item := range included {
		if item.Type != "asset" {
			continue
		}
		var attrs struct {
			URL struct {
				Path string `mapstructure:"path"`
			} `mapstructure:"url"`
		}
		if err := mapstructure.Decode(item.Attributes, &attrs); err != nil || attrs.URL.Path == "" {
			continue
		}
		assets = append(assets, Asset{ID: item.ID, URL: attrs.URL.Path})
	}
	return assets
}
