// Package zefania reads and writes Zefania XML bibles.
//
// Layout:
//
//	<XMLBIBLE biblename="...">
//	  <INFORMATION><title>...</title></INFORMATION>
//	  <BIBLEBOOK bnumber="1" bname="Genesis">
//	    <CHAPTER cnumber="1">
//	      <VERS vnumber="1">In the beginning ...</VERS>
//
// NOTE elements inside a verse are dropped from the text.
package zefania

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/JuniperSearch/core/books"
	"github.com/FocuswithJustin/JuniperSearch/core/corpus"
	apperrors "github.com/FocuswithJustin/JuniperSearch/core/errors"
	jxml "github.com/FocuswithJustin/JuniperSearch/core/xml"
)

const formatName = "Zefania XML"

var (
	bookExpr    = jxml.MustCompile("BIBLEBOOK")
	chapterExpr = jxml.MustCompile("CHAPTER")
	verseExpr   = jxml.MustCompile("VERS")
)

// Load decodes a Zefania document from r.
func Load(r io.Reader) (*corpus.Corpus, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.NewIO("read", "", err)
	}
	doc, err := jxml.Parse(data)
	if err != nil {
		return nil, &apperrors.ParseError{Format: formatName, Message: err.Error(), Err: err}
	}

	root := doc.Root()
	if root == nil || !strings.EqualFold(root.Name(), "XMLBIBLE") {
		return nil, apperrors.NewParse(formatName, "", "root element is not XMLBIBLE")
	}

	c := &corpus.Corpus{Title: root.Attr("biblename")}
	if title, err := doc.FindOne("/XMLBIBLE/INFORMATION/title"); err == nil && title != nil {
		if t := title.Text(); t != "" {
			c.Title = t
		}
	}

	for i, bn := range root.Select(bookExpr) {
		b, err := loadBook(bn, i)
		if err != nil {
			return nil, err
		}
		c.Books = append(c.Books, b)
	}
	return c, nil
}

func loadBook(bn *jxml.Node, pos int) (*corpus.Book, error) {
	number, err := optionalInt(bn.Attr("bnumber"))
	if err != nil {
		return nil, apperrors.NewParse(formatName, bn.Attr("bnumber"), "invalid bnumber")
	}
	b := &corpus.Book{
		Name:       strings.TrimSpace(bn.Attr("bname")),
		OrderIndex: number,
	}
	if b.Name == "" {
		b.Name = strings.TrimSpace(bn.Attr("bsname"))
	}
	if b.Name == "" {
		b.Name = nameForNumber(number)
	}
	if b.Name == "" {
		return nil, apperrors.NewParse(formatName, "", fmt.Sprintf("BIBLEBOOK %d has no name", pos+1))
	}

	for ci, cn := range bn.Select(chapterExpr) {
		n, err := optionalInt(cn.Attr("cnumber"))
		if err != nil || n < 0 {
			return nil, apperrors.NewParse(formatName, b.Name+" "+cn.Attr("cnumber"), "invalid cnumber")
		}
		if n == 0 {
			n = ci + 1
		}
		for len(b.Chapters) < n {
			b.Chapters = append(b.Chapters, corpus.Chapter{})
		}
		for vi, vn := range cn.Select(verseExpr) {
			v, err := optionalInt(vn.Attr("vnumber"))
			if err != nil || v < 0 {
				return nil, apperrors.NewParse(formatName, fmt.Sprintf("%s %d:%s", b.Name, n, vn.Attr("vnumber")), "invalid vnumber")
			}
			if v == 0 {
				v = vi + 1
			}
			b.Chapters[n-1] = append(b.Chapters[n-1], corpus.Verse{V: v, T: vn.TextWithout("NOTE")})
		}
	}
	return b, nil
}

func optionalInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// nameForNumber maps a Zefania book number (1-66 canon order) to a name.
func nameForNumber(n int) string {
	if n < 1 {
		return ""
	}
	for _, b := range books.Default().InGroup(books.GroupCanon) {
		if b.Order == n {
			return b.Name
		}
	}
	return ""
}

type xmlBible struct {
	XMLName   xml.Name  `xml:"XMLBIBLE"`
	BibleName string    `xml:"biblename,attr,omitempty"`
	Info      *xmlInfo  `xml:"INFORMATION,omitempty"`
	Books     []xmlBook `xml:"BIBLEBOOK"`
}

type xmlInfo struct {
	Title string `xml:"title"`
}

type xmlBook struct {
	Number   int          `xml:"bnumber,attr"`
	Name     string       `xml:"bname,attr"`
	Chapters []xmlChapter `xml:"CHAPTER"`
}

type xmlChapter struct {
	Number int        `xml:"cnumber,attr"`
	Verses []xmlVerse `xml:"VERS"`
}

type xmlVerse struct {
	Number int    `xml:"vnumber,attr"`
	Text   string `xml:",chardata"`
}

// Write encodes c as a Zefania document. Empty chapters are omitted; their
// numbers are kept by the cnumber of later chapters.
func Write(w io.Writer, c *corpus.Corpus) error {
	if c == nil {
		c = &corpus.Corpus{}
	}
	doc := xmlBible{BibleName: c.Title}
	if c.Title != "" {
		doc.Info = &xmlInfo{Title: c.Title}
	}
	for i, b := range c.Books {
		xb := xmlBook{Number: b.OrderIndex, Name: b.Name}
		if xb.Number == 0 {
			xb.Number = i + 1
		}
		for ci, ch := range b.Chapters {
			if len(ch) == 0 {
				continue
			}
			xc := xmlChapter{Number: ci + 1}
			for _, v := range ch {
				xc.Verses = append(xc.Verses, xmlVerse{Number: v.V, Text: v.T})
			}
			xb.Chapters = append(xb.Chapters, xc)
		}
		doc.Books = append(doc.Books, xb)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode %s: %w", formatName, err)
	}
	return enc.Close()
}
