package drupal

import (
	"slices"
	"strings"

	e2eerrors "github.com/jhu-idc/idce2e/internal/errors"
)

// MigrationKind identifies one of the ingest migrations offered by the
// migrate_source_ui form. The set is closed: values outside it are rejected
// before the form is touched.
type MigrationKind string

// Ingest migrations for repository content.
const (
	NewItems      MigrationKind = "idc_ingest_new_items"
	NewCollection MigrationKind = "idc_ingest_new_collection"
	MediaFile     MigrationKind = "idc_ingest_media_file"
	MediaImage    MigrationKind = "idc_ingest_media_image"
)

// Ingest migrations for taxonomy vocabularies.
const (
	TaxonomyAccessRights    MigrationKind = "idc_ingest_taxonomy_accessrights"
	TaxonomyAccessTerms     MigrationKind = "idc_ingest_taxonomy_islandora_accessterms"
	TaxonomyCopyrightAndUse MigrationKind = "idc_ingest_taxonomy_copyrightanduse"
	TaxonomyCorporateBody   MigrationKind = "idc_ingest_taxonomy_corporatebody"
	TaxonomyFamily          MigrationKind = "idc_ingest_taxonomy_family"
	TaxonomyGenre           MigrationKind = "idc_ingest_taxonomy_genre"
	TaxonomyGeolocation     MigrationKind = "idc_ingest_taxonomy_geolocation"
	TaxonomyLanguage        MigrationKind = "idc_ingest_taxonomy_language"
	TaxonomyPerson          MigrationKind = "idc_ingest_taxonomy_persons"
	TaxonomyResourceTypes   MigrationKind = "idc_ingest_taxonomy_resourcetypes"
	TaxonomySubject         MigrationKind = "idc_ingest_taxonomy_subject"
)

// migrationKinds lists every known kind in the order a full fixture load
// runs them: vocabularies first, then collections, items and media.
//
//nolint:gochecknoglobals // closed enumeration
var migrationKinds = []MigrationKind{
	TaxonomyAccessRights,
	TaxonomyAccessTerms,
	TaxonomyCopyrightAndUse,
	TaxonomyCorporateBody,
	TaxonomyFamily,
	TaxonomyGenre,
	TaxonomyGeolocation,
	TaxonomyLanguage,
	TaxonomyPerson,
	TaxonomyResourceTypes,
	TaxonomySubject,
	NewCollection,
	NewItems,
	MediaFile,
	MediaImage,
}

// MigrationKinds returns every known migration kind in load order.
func MigrationKinds() []MigrationKind {
	return slices.Clone(migrationKinds)
}

// ParseMigrationKind returns the kind with the given identifier.
func ParseMigrationKind(id string) (MigrationKind, error) {
	k := MigrationKind(strings.TrimSpace(id))
	if !k.Valid() {
		return "", e2eerrors.Wrapf(e2eerrors.ErrUnknownMigrationKind, "%q", id)
	}
	return k, nil
}

// Valid reports whether k is a known kind.
func (k MigrationKind) Valid() bool {
	return slices.Contains(migrationKinds, k)
}

// ID returns the migration identifier submitted with the form.
func (k MigrationKind) ID() string {
	return string(k)
}

// String implements fmt.Stringer.
func (k MigrationKind) String() string {
	return string(k)
}

// IsTaxonomy reports whether k loads a vocabulary.
func (k MigrationKind) IsTaxonomy() bool {
	return strings.HasPrefix(string(k), "idc_ingest_taxonomy_")
}
