package xmltree

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

const sample = `<?xml version="1.0" encoding="UTF-8"?>
<nfeProc xmlns="http://www.portalfiscal.inf.br/nfe" versao="4.00">
  <NFe>
    <infNFe Id="NFe3524" versao="4.00">
      <ide><nNF>1234</nNF><serie>2</serie></ide>
      <det nItem="1"><prod><xProd>  Caneta Azul </xProd></prod></det>
      <det nItem="2"><prod><xProd>Lápis</xProd></prod></det>
      <empty></empty>
    </infNFe>
  </NFe>
</nfeProc>`

func TestParseAndNavigate(t *testing.T) {
	doc, err := ParseString(sample)
	require.NoError(t, err)

	inf := doc.Find("nfeProc", "NFe", "infNFe")
	require.NotNil(t, inf)
	assert.Equal(t, "NFe3524", inf.Attrs["Id"])
	assert.Equal(t, "http://www.portalfiscal.inf.br/nfe", inf.Space)

	assert.Equal(t, "1234", inf.ValueOr("0", "ide", "nNF"))
	assert.Equal(t, "fallback", inf.ValueOr("fallback", "ide", "dhEmi"))

	dets := inf.ChildrenNamed("det")
	require.Len(t, dets, 2)
	assert.Equal(t, "Caneta Azul", dets[0].Find("prod", "xProd").Text)
	assert.Equal(t, "Lápis", dets[1].Find("prod", "xProd").Text)

	_, ok := inf.Lookup("empty")
	assert.False(t, ok)
}

func TestFindOnMissingPathIsNilSafe(t *testing.T) {
	doc, err := ParseString(sample)
	require.NoError(t, err)

	assert.Nil(t, doc.Find("NFe", "infNFe"))
	assert.Nil(t, doc.Find("nfeProc", "missing", "deeper"))

	var n *Node
	assert.Nil(t, n.Child("x"))
	assert.Empty(t, n.ChildrenNamed("x"))
	assert.Equal(t, "d", n.ValueOr("d", "a"))
}

func TestParseDeclaredLatin1(t *testing.T) {
	encoded, err := charmap.ISO8859_1.NewEncoder().String(
		`<?xml version="1.0" encoding="ISO-8859-1"?><emit><xNome>Papelaria São João</xNome></emit>`)
	require.NoError(t, err)

	doc, err := Parse(bytes.NewReader([]byte(encoded)))
	require.NoError(t, err)
	assert.Equal(t, "Papelaria São João", doc.ValueOr("", "emit", "xNome"))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"mismatched tags", "<a><b></a>", ErrSyntax},
		{"unclosed root", "<a><b></b>", ErrSyntax},
		{"no elements", "   ", ErrEmpty},
		{"plain text", "not xml at all", ErrEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
