// Package templates locates the pre-designed background pages a report is
// assembled from.
//
// The catalog is a directory laid out as
//
//	basic/1.pdf .. basic/7.pdf          cover, title, content 3-5, closing 6-7
//	premium/cover.pdf                   personalized cover background
//	premium/title.pdf                   static title page
//	premium/closing.pdf                 static closing page
//	premium/<section>/title.pdf         section title
//	premium/<section>/divider-<n>.pdf   subsection n descriptor page
//	premium/<section>/content.pdf       background of rendered pages
//	premium/<section>/notes.pdf         section notes page
package templates

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/thywilljoshua/survey-report/internal/failure"
	"github.com/thywilljoshua/survey-report/internal/plan"
)

type Role string

const (
	RoleCover   Role = "cover"
	RoleTitle   Role = "title"
	RoleDivider Role = "divider"
	RoleNote    Role = "note"
	RoleClosing Role = "closing"
	RoleContent Role = "content"
)

// Basic reports use fixed numbered pages.
const (
	basicContentFirst = 3
	basicContentPages = 3
	basicClosingFirst = 6
	BasicClosingPages = 2
)

// Key identifies one template page. Block is the 0-based subsection index
// for dividers and the page index for basic content and closing pages.
type Key struct {
	Variant plan.Variant
	Section string
	Block   int
	Role    Role
}

func (k Key) String() string {
	s := string(k.Variant) + "/" + string(k.Role)
	if k.Section != "" {
		s += "/" + k.Section
	}
	if k.Role == RoleDivider || (k.Variant == plan.Basic && (k.Role == RoleContent || k.Role == RoleClosing)) {
		s += "#" + strconv.Itoa(k.Block)
	}
	return s
}

// Catalog is read-only and safe for concurrent use.
type Catalog struct {
	dir string
}

func New(dir string) *Catalog { return &Catalog{dir: dir} }

func (c *Catalog) Dir() string { return c.dir }

// Path maps k to its file path without touching the filesystem.
func (c *Catalog) Path(k Key) (string, error) {
	rel, err := relPath(k)
	if err != nil {
		return "", err
	}
	return filepath.Join(c.dir, rel), nil
}

func relPath(k Key) (string, error) {
	switch k.Variant {
	case plan.Basic:
		switch k.Role {
		case RoleCover:
			return "basic/1.pdf", nil
		case RoleTitle:
			return "basic/2.pdf", nil
		case RoleContent:
			b := min(max(k.Block, 0), basicContentPages-1)
			return fmt.Sprintf("basic/%d.pdf", basicContentFirst+b), nil
		case RoleClosing:
			if k.Block < 0 || k.Block >= BasicClosingPages {
				return "", fmt.Errorf("template %s: closing page out of range", k)
			}
			return fmt.Sprintf("basic/%d.pdf", basicClosingFirst+k.Block), nil
		}
	case plan.Premium:
		if k.Section == "" {
			switch k.Role {
			case RoleCover, RoleTitle, RoleClosing:
				return "premium/" + string(k.Role) + ".pdf", nil
			}
			break
		}
		switch k.Role {
		case RoleTitle, RoleContent:
			return filepath.Join("premium", k.Section, string(k.Role)+".pdf"), nil
		case RoleNote:
			return filepath.Join("premium", k.Section, "notes.pdf"), nil
		case RoleDivider:
			if k.Block < 0 {
				return "", fmt.Errorf("template %s: negative block", k)
			}
			return filepath.Join("premium", k.Section, fmt.Sprintf("divider-%d.pdf", k.Block+1)), nil
		}
	}
	return "", fmt.Errorf("no template for %s", k)
}

// Resolve returns the path of an existing template, or a
// *failure.MissingTemplateError.
func (c *Catalog) Resolve(k Key) (string, error) {
	p, err := c.Path(k)
	if err != nil {
		return "", &failure.MissingTemplateError{Key: k.String(), Path: "", Err: err}
	}
	st, err := os.Stat(p)
	if err != nil {
		return "", &failure.MissingTemplateError{Key: k.String(), Path: p, Err: err}
	}
	if st.IsDir() || st.Size() == 0 {
		return "", &failure.MissingTemplateError{Key: k.String(), Path: p, Err: errors.New("not a template file")}
	}
	return p, nil
}

// Keys lists every template a report of p uses, in document order.
func Keys(p plan.Plan) []Key {
	v := p.Variant
	var keys []Key
	switch v {
	case plan.Basic:
		keys = append(keys, Key{Variant: v, Role: RoleCover}, Key{Variant: v, Role: RoleTitle})
		for i := range basicContentPages {
			keys = append(keys, Key{Variant: v, Role: RoleContent, Block: i})
		}
		for i := range BasicClosingPages {
			keys = append(keys, Key{Variant: v, Role: RoleClosing, Block: i})
		}
	case plan.Premium:
		keys = append(keys, Key{Variant: v, Role: RoleCover}, Key{Variant: v, Role: RoleTitle})
		for _, s := range p.Sections {
			keys = append(keys, Key{Variant: v, Section: s.Key, Role: RoleTitle})
			for j := range s.Subsections {
				keys = append(keys, Key{Variant: v, Section: s.Key, Role: RoleDivider, Block: j})
			}
			keys = append(keys,
				Key{Variant: v, Section: s.Key, Role: RoleContent},
				Key{Variant: v, Section: s.Key, Role: RoleNote})
		}
		keys = append(keys, Key{Variant: v, Role: RoleClosing})
	}
	return keys
}

// Validate checks that every template p needs is present. All missing
// templates are reported together.
func (c *Catalog) Validate(p plan.Plan) error {
	var errs []error
	for _, k := range Keys(p) {
		if _, err := c.Resolve(k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
