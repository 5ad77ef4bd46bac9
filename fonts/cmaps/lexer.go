package cmaps

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/benoitkugler/fontmap/model"
	tokenizer "github.com/benoitkugler/pstokenizer"
)

type cmapObject interface{}

// keyword, such as begincidrange or def
type cmapOperand string

// cmapHexString represents a PostScript hex string such as <FFFF>,
// already decoded
type cmapHexString []byte

// cmapInvalidNumber is a numeric token which could not be converted
type cmapInvalidNumber string

type cmapArray = []cmapObject

type cmapDict = map[model.ObjName]cmapObject

// lexer groups the tokens into objects
type lexer struct {
	tokenizer tokenizer.Tokenizer
}

func newLexer(content []byte) *lexer {
	return &lexer{tokenizer: *tokenizer.NewTokenizer(content)}
}

// parseObject detects the signature at the current position and parses the corresponding object.
// a nil object with a nil error means EOF
func (p *lexer) parseObject() (cmapObject, error) {
	token, err := p.tokenizer.NextToken()
	for ; token.Kind != tokenizer.EOF && err == nil; token, err = p.tokenizer.NextToken() {
		switch token.Kind {
		case tokenizer.Name:
			return model.ObjName(token.Value), nil
		case tokenizer.String:
			return string(token.Value), nil
		case tokenizer.StringHex:
			return cmapHexString(token.Value), nil
		case tokenizer.StartArray:
			return p.parseArray()
		case tokenizer.StartDic:
			return p.parseDict()
		case tokenizer.Integer:
			// token.Int goes through a float, and does not report overflows
			v, err := strconv.Atoi(string(token.Value))
			if err != nil {
				return cmapInvalidNumber(token.Value), nil
			}
			return v, nil
		case tokenizer.Float:
			v, err := token.Float()
			if err != nil {
				return cmapInvalidNumber(token.Value), nil
			}
			return v, nil
		case tokenizer.EndArray, tokenizer.EndDic: // should not happend here
			return nil, errors.New("unexpected end of container")
		case tokenizer.Other:
			return cmapOperand(token.Value), nil
		}
		// default: continue
	}
	return nil, err
}

// parseArray parses a PostScript array, which starts with '[', ends with ']'and can contain any kinds of
// direct objects.
func (p *lexer) parseArray() (cmapArray, error) {
	var arr cmapArray
	token, err := p.tokenizer.PeekToken()
	for ; token.Kind != tokenizer.EOF && err == nil; token, err = p.tokenizer.PeekToken() {
		switch token.Kind {
		case tokenizer.EndArray:
			// consume
			_, _ = p.tokenizer.NextToken()
			return arr, nil
		default:
			obj, err := p.parseObject()
			if err != nil {
				return nil, err
			}
			arr = append(arr, obj)
		}
	}
	if err == nil {
		err = errors.New("unterminated array")
	}
	return nil, err
}

// parseDict parses a dictionary object, which starts with with '<<' and ends with '>>'.
func (p *lexer) parseDict() (cmapDict, error) {
	dict := cmapDict{}
	token, err := p.tokenizer.NextToken()
	for ; token.Kind != tokenizer.EOF && err == nil; token, err = p.tokenizer.NextToken() {
		switch token.Kind {
		case tokenizer.Name: // key
			key := model.ObjName(token.Value)
			value, err := p.parseObject()
			if err != nil {
				return nil, err
			}
			if value == nil {
				return nil, errors.New("unterminated dictionary")
			}
			dict[key] = value

			// Skip "def" which optionally follows key value dict definitions in CMaps.
			token, err = p.tokenizer.PeekToken()
			if err != nil {
				return nil, err
			}
			if token.IsOther("def") {
				_, _ = p.tokenizer.NextToken() // consume it
			}
		case tokenizer.EndDic:
			return dict, nil
		default:
			return nil, fmt.Errorf("invalid token in dict %v", token)
		}
	}
	if err == nil {
		err = errors.New("unterminated dictionary")
	}
	return nil, err
}
