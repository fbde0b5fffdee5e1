package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
)

// Fingerprint is a content-shape signature: it captures which PHI
// categories a file contains and their relative occurrence proportions, not
// the raw sensitive values. Files sharing the same PHI shape collapse to
// the same fingerprint even when exact values differ, which is what makes
// duplicate and proliferation detection possible.
type Fingerprint struct {
	Hash                 string     `json:"hash"`
	Categories           []Category `json:"categories"`
	RepresentativeSample string     `json:"representative_sample,omitempty"`
	OccurrenceCount      int        `json:"occurrence_count"`

	// profile of the first file that produced this fingerprint, used to
	// compute link similarity for later files
	profile map[Category]float64
}

// FingerprintLink relates a file to a fingerprint it matches at some
// similarity.
type FingerprintLink struct {
	FileID          string  `json:"file_id"`
	FingerprintHash string  `json:"fingerprint_hash"`
	Similarity      float64 `json:"similarity"`
}

// proportionBuckets quantizes category proportions to 10% steps so small
// count jitter between near-duplicate files still lands on the same hash.
const proportionBuckets = 10

// categoryProfile computes each category's share of the file's total
// occurrences.
func categoryProfile(findings []Finding) map[Category]float64 {
	total := TotalOccurrences(findings)
	if total == 0 {
		return nil
	}
	profile := make(map[Category]float64, len(findings))
	for _, f := range findings {
		profile[f.Category] += float64(f.Occurrences) / float64(total)
	}
	return profile
}

// ComputeFingerprint derives a fingerprint from a file's findings. The hash
// is a SHA-256 over the sorted category:proportion-bucket pairs; it is
// deterministic and independent of the raw matched values. Files with no
// findings produce no fingerprint.
func ComputeFingerprint(findings []Finding) (Fingerprint, bool) {
	profile := categoryProfile(findings)
	if len(profile) == 0 {
		return Fingerprint{}, false
	}

	categories := make([]Category, 0, len(profile))
	for c := range profile {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	parts := make([]string, 0, len(categories))
	for _, c := range categories {
		bucket := int(math.Round(profile[c] * proportionBuckets))
		parts = append(parts, fmt.Sprintf("%s:%d", c, bucket))
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, ";")))

	sample := ""
	if len(findings) > 0 {
		sample = findings[0].MaskedSample
	}

	return Fingerprint{
		Hash:                 hex.EncodeToString(sum[:]),
		Categories:           categories,
		RepresentativeSample: sample,
		profile:              profile,
	}, true
}

// ProfileSimilarity measures how closely two category/occurrence profiles
// match: 1.0 for identical category sets and proportions, degrading toward
// 0 as the sets diverge. It is symmetric, so duplicate relations built on
// it are symmetric too.
func ProfileSimilarity(a, b map[Category]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	union := make(map[Category]struct{}, len(a)+len(b))
	for c := range a {
		union[c] = struct{}{}
	}
	for c := range b {
		union[c] = struct{}{}
	}

	var distance float64
	for c := range union {
		distance += math.Abs(a[c] - b[c])
	}

	// Total variation distance: L1/2 is in [0,1] for two distributions.
	return 1 - distance/2
}

// FingerprintIndex tracks fingerprints across an organization's files and
// answers duplicate queries. Safe for concurrent use.
type FingerprintIndex struct {
	mu          sync.Mutex
	byHash      map[string]*Fingerprint
	filesByHash map[string][]string
	hashsByFile map[string][]string
}

// NewFingerprintIndex creates an empty index.
func NewFingerprintIndex() *FingerprintIndex {
	return &FingerprintIndex{
		byHash:      make(map[string]*Fingerprint),
		filesByHash: make(map[string][]string),
		hashsByFile: make(map[string][]string),
	}
}

// Add fingerprints a file's findings and records the file against the
// resulting fingerprint. It returns the link describing how closely the
// file's own profile matches the fingerprint's representative profile, or
// false when the file has no findings to fingerprint.
func (ix *FingerprintIndex) Add(fileID string, findings []Finding) (FingerprintLink, bool) {
	fp, ok := ComputeFingerprint(findings)
	if !ok {
		return FingerprintLink{}, false
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	existing, seen := ix.byHash[fp.Hash]
	if !seen {
		existing = &fp
		ix.byHash[fp.Hash] = existing
	}

	// Occurrence count tracks distinct files, so re-scanning a file does
	// not inflate the proliferation signal.
	if !ix.hasFile(fp.Hash, fileID) {
		existing.OccurrenceCount++
		ix.filesByHash[fp.Hash] = append(ix.filesByHash[fp.Hash], fileID)
		ix.hashsByFile[fileID] = append(ix.hashsByFile[fileID], fp.Hash)
	}

	return FingerprintLink{
		FileID:          fileID,
		FingerprintHash: fp.Hash,
		Similarity:      ProfileSimilarity(fp.profile, existing.profile),
	}, true
}

func (ix *FingerprintIndex) hasFile(hash, fileID string) bool {
	for _, id := range ix.filesByHash[hash] {
		if id == fileID {
			return true
		}
	}
	return false
}

// Lookup returns the fingerprint for a hash.
func (ix *FingerprintIndex) Lookup(hash string) (Fingerprint, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	fp, ok := ix.byHash[hash]
	if !ok {
		return Fingerprint{}, false
	}
	return *fp, true
}

// DuplicatesOf returns every other file sharing at least one fingerprint
// hash with the given file, sorted for deterministic output. The relation
// is symmetric by construction: both files are recorded under the shared
// hash, so each appears in the other's result.
func (ix *FingerprintIndex) DuplicatesOf(fileID string) []string {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	seen := make(map[string]struct{})
	for _, hash := range ix.hashsByFile[fileID] {
		for _, other := range ix.filesByHash[hash] {
			if other != fileID {
				seen[other] = struct{}{}
			}
		}
	}

	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
