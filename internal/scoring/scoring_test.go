package scoring

import (
	"strings"
	"testing"

	"github.com/repradar/repradar/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestRiskScore_EmptyInput(t *testing.T) {
	assert.Equal(t, 0, RiskScore(nil))
	assert.Equal(t, 0, RiskScore([]string{}))
	assert.Equal(t, 0, RiskScore([]string{"", "   ", "\t\n"}))
}

func TestRiskScore_NoRiskKeywords(t *testing.T) {
	texts := []string{"just a perfectly ordinary product announcement"}
	assert.Equal(t, 0, RiskScore(texts))
}

func TestRiskScore_Density(t *testing.T) {
	// 1 risk token out of 10 words: 1/10*100*10 = 100.
	texts := []string{"one two three four five six seven eight nine scam"}
	assert.Equal(t, 100, RiskScore(texts))

	// 1 risk token out of 20 words: 1/20*100*10 = 50.
	texts = []string{
		"one two three four five six seven eight nine ten",
		"one two three four five six seven eight nine scam",
	}
	assert.Equal(t, 50, RiskScore(texts))
}

func TestRiskScore_ClampedAt100(t *testing.T) {
	assert.Equal(t, 100, RiskScore([]string{"scam fraud ripoff lawsuit"}))
}

func TestRiskScore_SubstringMatch(t *testing.T) {
	// "scammer" contains "scam"; the substring rule is intentional.
	texts := []string{"that scammer took one two three four five six"}
	assert.Equal(t, 100, RiskScore(texts))
}

func TestRiskScore_MonotonicUnderNegativeAppend(t *testing.T) {
	base := []string{"a review of the company and its support team overall"}
	score := RiskScore(base)

	grown := append(append([]string{}, base...), "scam scam scam")
	assert.GreaterOrEqual(t, RiskScore(grown), score)
}

func TestSentiment_EmptyInput(t *testing.T) {
	assert.Equal(t, models.SentimentNeutral, Sentiment(nil))
	assert.Equal(t, models.SentimentNeutral, Sentiment([]string{}))
}

func TestSentiment_NoLexiconHits(t *testing.T) {
	texts := []string{"a plain description of the service with no opinions"}
	assert.Equal(t, models.SentimentNeutral, Sentiment(texts))
}

func TestSentiment_Classification(t *testing.T) {
	tests := []struct {
		name     string
		texts    []string
		expected models.Sentiment
	}{
		{
			name:     "Clearly positive",
			texts:    []string{"great service, love it, highly recommend"},
			expected: models.SentimentPositive,
		},
		{
			name:     "Clearly negative",
			texts:    []string{"terrible experience, awful support, total scam"},
			expected: models.SentimentNegative,
		},
		{
			name:     "Balanced stays neutral",
			texts:    []string{"good product but terrible support", "great idea, awful execution"},
			expected: models.SentimentNeutral,
		},
		{
			name: "Needs 1.5x margin to win",
			// 3 positive vs 2 negative: 3 > 3.0 is false, so neutral.
			texts:    []string{"good great best bad terrible"},
			expected: models.SentimentNeutral,
		},
		{
			name: "2 to 1 crosses the margin",
			// 2 positive vs 1 negative: 2 > 1.5.
			texts:    []string{"good great bad"},
			expected: models.SentimentPositive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Sentiment(tt.texts))
		})
	}
}

func TestSentiment_SubstringMatchQuirk(t *testing.T) {
	// "badge" contains "bad". Preserved on purpose; see package doc.
	assert.Equal(t, models.SentimentNegative, Sentiment([]string{"collecting a badge"}))
}

func TestRiskScore_LargeInputStaysBounded(t *testing.T) {
	texts := []string{strings.Repeat("scam fraud awful ", 500)}
	score := RiskScore(texts)
	assert.GreaterOrEqual(t, score, 0)
	assert.LessOrEqual(t, score, 100)
}
