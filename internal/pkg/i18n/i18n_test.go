package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestLookup(t *testing.T) {
	getString := Default()
	assert.Equal(t, "Connector is required", getString("validation.required", getString("common.connector")))
	assert.Equal(t, "no.such.key", getString("no.such.key"))
}

func TestGermanFallsBackToEnglish(t *testing.T) {
	getString := New(language.German)
	assert.Equal(t, "Region ist erforderlich", getString("validation.required", getString("common.region")))
	assert.Equal(t, "Flag State", getString("common.state"))
}

func TestFromAcceptLanguage(t *testing.T) {
	assert.Equal(t, "Zeitlimit", FromAcceptLanguage("de-DE,de;q=0.9,en;q=0.5")("common.timeout"))
	assert.Equal(t, "Timeout", FromAcceptLanguage("fr-FR")("common.timeout"))
	assert.Equal(t, "Timeout", FromAcceptLanguage("")("common.timeout"))
}
