package model

import "testing"

// scoreFinding builds a minimal finding for score tests.
func scoreFinding(severity Severity, count int) Finding {
	return Finding{
		Category: CategoryTitles,
		Type:     "duplicate_titles",
		Severity: severity,
		Count:    count,
	}
}

// TestCalculateScore tests the health score formula.
func TestCalculateScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		findings []Finding
		want     int
	}{
		{
			name:     "no findings is a perfect score",
			findings: nil,
			want:     100,
		},
		{
			name:     "one low finding barely dents the score",
			findings: []Finding{scoreFinding(SeverityLow, 1)},
			want:     99,
		},
		{
			name:     "one critical finding",
			findings: []Finding{scoreFinding(SeverityCritical, 1)},
			want:     81,
		},
		{
			name:     "count factor caps at ten URLs",
			findings: []Finding{scoreFinding(SeverityCritical, 10)},
			want:     40,
		},
		{
			name:     "huge count scores the same as the cap",
			findings: []Finding{scoreFinding(SeverityCritical, 500)},
			want:     40,
		},
		{
			name: "score floors at zero",
			findings: []Finding{
				scoreFinding(SeverityCritical, 50),
				scoreFinding(SeverityCritical, 50),
				scoreFinding(SeverityCritical, 50),
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CalculateScore(tt.findings); got != tt.want {
				t.Errorf("CalculateScore() = %d, want %d", got, tt.want)
			}
		})
	}
}

// TestCalculateScoreMonotonic verifies that adding a finding never
// raises the score.
func TestCalculateScoreMonotonic(t *testing.T) {
	t.Parallel()

	findings := []Finding{}
	prev := CalculateScore(findings)

	additions := []Finding{
		scoreFinding(SeverityLow, 1),
		scoreFinding(SeverityMedium, 3),
		scoreFinding(SeverityHigh, 8),
		scoreFinding(SeverityCritical, 25),
	}
	for _, add := range additions {
		findings = append(findings, add)
		score := CalculateScore(findings)
		if score > prev {
			t.Errorf("score rose from %d to %d after adding a %s finding", prev, score, add.Severity)
		}
		prev = score
	}
}

// TestNewAuditResult tests assembly of the root aggregate.
func TestNewAuditResult(t *testing.T) {
	t.Parallel()

	stats := CrawlStats{
		Domain:          "example.com",
		BaseURL:         "https://example.com/",
		DiscoveryMethod: "sitemap",
		URLsDiscovered:  40,
		URLsAnalyzed:    38,
	}
	findings := []Finding{
		{Category: CategoryTitles, Type: "duplicate_titles", Severity: SeverityHigh, Count: 4},
		{Category: CategoryContent, Type: "thin_content", Severity: SeverityMedium, Count: 2},
		{Category: CategoryTitles, Type: "missing_title", Severity: SeverityCritical, Count: 1},
	}

	result := NewAuditResult(stats, findings, nil)

	if result.Domain != "example.com" {
		t.Errorf("Domain = %q, want example.com", result.Domain)
	}
	if result.Score != CalculateScore(findings) {
		t.Errorf("Score = %d, want %d", result.Score, CalculateScore(findings))
	}
	if result.DateAudited.IsZero() {
		t.Error("DateAudited is zero")
	}

	if got := len(result.AllFindings[CategoryTitles]); got != 2 {
		t.Errorf("titles findings = %d, want 2", got)
	}
	if got := len(result.AllFindings[CategoryContent]); got != 1 {
		t.Errorf("content findings = %d, want 1", got)
	}
	if _, ok := result.AllFindings[CategorySchema]; ok {
		t.Error("empty category present in AllFindings, want omitted")
	}
	if result.TotalFindings() != 3 {
		t.Errorf("TotalFindings() = %d, want 3", result.TotalFindings())
	}
}

// TestFindingFor tests the quick-win to finding invariant lookup.
func TestFindingFor(t *testing.T) {
	t.Parallel()

	result := &AuditResult{
		AllFindings: map[Category][]Finding{
			CategoryTitles: {
				{Category: CategoryTitles, Type: "duplicate_titles", Count: 4},
			},
		},
	}

	t.Run("returns the backing finding", func(t *testing.T) {
		t.Parallel()
		win := QuickWin{Category: CategoryTitles, Type: "duplicate_titles"}
		f := result.FindingFor(win)
		if f == nil {
			t.Fatal("FindingFor() = nil, want the backing finding")
		}
		if f.Count != 4 {
			t.Errorf("Count = %d, want 4", f.Count)
		}
	})

	t.Run("returns nil when no finding backs the win", func(t *testing.T) {
		t.Parallel()
		win := QuickWin{Category: CategoryTitles, Type: "title_length"}
		if f := result.FindingFor(win); f != nil {
			t.Errorf("FindingFor() = %v, want nil", f)
		}
	})
}

// TestImpactFromSeverity tests the severity to impact collapse.
func TestImpactFromSeverity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		severity Severity
		want     Impact
	}{
		{SeverityCritical, ImpactHigh},
		{SeverityHigh, ImpactHigh},
		{SeverityMedium, ImpactMedium},
		{SeverityLow, ImpactLow},
	}

	for _, tt := range tests {
		t.Run(tt.severity.String(), func(t *testing.T) {
			t.Parallel()
			if got := ImpactFromSeverity(tt.severity); got != tt.want {
				t.Errorf("ImpactFromSeverity(%v) = %q, want %q", tt.severity, got, tt.want)
			}
		})
	}
}
