/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: applinks_parser_test.go
Description: Tests for the domain verification dump parser. Covers status
token extraction across platform vocabularies, user-disabled domain selection,
duplicate domain handling, and malformed input.
*/

package dump

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const appLinksDump = `  com.example.app:
    ID: 01234567-89ab-cdef-0123-456789abcdef
    Signatures: [AB:CD:EF]
    Domain verification state:
      example.com: verified
      promo.example.com: 1024
      beta.example.com: none
    User 0:
      Verification link handling allowed: true
      Selection state:
        Disabled:
          optout.example.com
`

func TestParseAppLinksStates(t *testing.T) {
	res, err := ParseAppLinks("com.example.app", appLinksDump)
	require.NoError(t, err)

	byDomain := map[string]DomainRecord{}
	for _, d := range res.Domains {
		byDomain[d.Domain] = d
	}

	require.Contains(t, byDomain, "example.com")
	assert.Equal(t, "verified", byDomain["example.com"].RawStatus)

	require.Contains(t, byDomain, "promo.example.com")
	assert.Equal(t, "1024", byDomain["promo.example.com"].RawStatus)

	require.Contains(t, byDomain, "beta.example.com")
	assert.Equal(t, "none", byDomain["beta.example.com"].RawStatus)
}

func TestParseAppLinksDisabledSelection(t *testing.T) {
	res, err := ParseAppLinks("com.example.app", appLinksDump)
	require.NoError(t, err)

	var optout *DomainRecord
	for i := range res.Domains {
		if res.Domains[i].Domain == "optout.example.com" {
			optout = &res.Domains[i]
		}
	}
	require.NotNil(t, optout)
	assert.True(t, optout.Disabled)
}

func TestParseAppLinksDisabledOverridesState(t *testing.T) {
	text := `Domain verification state:
  example.com: verified
Disabled:
  example.com
`
	res, err := ParseAppLinks("com.example.app", text)
	require.NoError(t, err)

	require.Len(t, res.Domains, 1)
	assert.Equal(t, "verified", res.Domains[0].RawStatus)
	assert.True(t, res.Domains[0].Disabled)
}

func TestParseAppLinksLaterStateWins(t *testing.T) {
	text := `Domain verification state:
  example.com: none
Domain verification state:
  example.com: verified
`
	res, err := ParseAppLinks("com.example.app", text)
	require.NoError(t, err)

	require.Len(t, res.Domains, 1)
	assert.Equal(t, "verified", res.Domains[0].RawStatus)
}

func TestParseAppLinksEmptyInput(t *testing.T) {
	_, err := ParseAppLinks("com.example.app", " \n ")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedInput)
}
