package deid

import "regexp"

// pattern pairs a compiled regex with its entity type and a base
// confidence. Regex-backed structural patterns score 0.9; the person-name
// heuristic is ambiguous and scores 0.7.
type pattern struct {
	re         *regexp.Regexp
	entityType EntityType
	confidence float64
}

// Detector scans text for sensitive entities. It is stateless after
// construction and safe for concurrent use.
type Detector struct {
	patterns []pattern
}

// NewDetector compiles the built-in detection patterns.
func NewDetector() *Detector {
	return &Detector{
		patterns: []pattern{
			{
				re:         regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
				entityType: EntityEmail,
				confidence: 0.9,
			},
			{
				re:         regexp.MustCompile(`\b(\+?\d{1,3}[-.]?)?\(?\d{3}\)?[-.]?\d{3}[-.]?\d{4}\b`),
				entityType: EntityPhone,
				confidence: 0.9,
			},
			{
				re:         regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
				entityType: EntitySSN,
				confidence: 0.9,
			},
			{
				re:         regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`),
				entityType: EntityIPAddress,
				confidence: 0.9,
			},
			{
				re:         regexp.MustCompile(`\b(?:Dr\.|Mr\.|Mrs\.|Ms\.)\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*`),
				entityType: EntityPerson,
				confidence: 0.7,
			},
		},
	}
}

// Detect returns all candidate spans in text, ordered by pattern category
// then by match position within the category. Matches from different
// categories may overlap; resolving that is the caller's concern (see
// MergeOverlapping). Empty text yields an empty result.
func (d *Detector) Detect(text string) []DetectedSpan {
	if text == "" {
		return nil
	}

	var spans []DetectedSpan
	for _, p := range d.patterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			spans = append(spans, DetectedSpan{
				Type:       p.entityType,
				Value:      text[loc[0]:loc[1]],
				Confidence: p.confidence,
				Start:      loc[0],
				End:        loc[1],
			})
		}
	}
	return spans
}
