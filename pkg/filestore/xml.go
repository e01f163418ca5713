// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package filestore

import (
	"bytes"

	"github.com/beevik/etree"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/net/html/charset"
)

// IndentSpaces is the indentation applied to every written XML tree.
const IndentSpaces = 2

const declaration = `version="1.0" encoding="UTF-8"`

// 📄 ParseXML parses a feed document. Declared non UTF-8 charsets are decoded,
// and a document without a root element is rejected.
func ParseXML(content []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel

	if err := doc.ReadFromBytes(content); err != nil {
		return nil, errors.Errorf("%w: %s", ErrMalformedFeed, err.Error())
	}
	if doc.Root() == nil {
		return nil, errors.Errorf("%w: no root element", ErrMalformedFeed)
	}
	return doc, nil
}

// 🖨️ Serialize replaces any xml declaration with a UTF-8 one, indents the
// tree and returns the encoded document.
func Serialize(doc *etree.Document) ([]byte, error) {
	for i := len(doc.Child) - 1; i >= 0; i-- {
		if pi, ok := doc.Child[i].(*etree.ProcInst); ok && pi.Target == "xml" {
			doc.RemoveChildAt(i)
		}
	}
	doc.InsertChildAt(0, etree.NewProcInst("xml", declaration))
	doc.Indent(IndentSpaces)

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, errors.Errorf("writing xml: %w", err)
	}
	return buf.Bytes(), nil
}
