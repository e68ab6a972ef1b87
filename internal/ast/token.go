package ast

// Highlighting token types understood by reporters.
const (
	TokenKeyword           = "keyword"
	TokenString            = "string"
	TokenComment           = "comment"
	TokenStructuredComment = "structured_comment"
	TokenAnnotation        = "annotation"
	TokenConstant          = "constant"
)

// Token is one highlighting span. Lines and columns are 1-based; EndCol
// points one column past the last character.
type Token struct {
	Type    string `json:"type"`
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	EndLine int    `json:"end_line"`
	EndCol  int    `json:"end_col"`
}

// KnownTokenType reports whether t is one of the highlighting types above.
func KnownTokenType(t string) bool {
	switch t {
	case TokenKeyword, TokenString, TokenComment, TokenStructuredComment, TokenAnnotation, TokenConstant:
		return true
	}
	return false
}

func tokensFromJSON(v jsonValue) []Token {
	if v.kind != 'a' {
		return nil
	}
	tokens := make([]Token, 0, len(v.items))
	for _, item := range v.items {
		if item.kind != 'o' {
			continue
		}
		typ, ok := item.member("type")
		if !ok || typ.kind != 's' {
			continue
		}
		tokens = append(tokens, Token{
			Type:    typ.text,
			Line:    metaInt(item, "line"),
			Col:     metaInt(item, "col"),
			EndLine: metaInt(item, "end_line"),
			EndCol:  metaInt(item, "end_col"),
		})
	}
	return tokens
}
