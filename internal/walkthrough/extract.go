package walkthrough

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// SectionSelector matches the heading of the walkthrough section.
const SectionSelector = "#rust-walkthroughs"

// ExtractArticles returns the walkthrough articles listed on one issue page.
// Pages without the section yield an empty slice and no error. Every li in
// the list, nested ones included, is visited in document order; items without
// an anchor href are skipped.
func ExtractArticles(r io.Reader) ([]Article, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse issue page: %w", err)
	}

	heading := doc.Find(SectionSelector).First()
	if heading.Length() == 0 {
		return []Article{}, nil
	}

	list := nextList(heading.Get(0))
	if list == nil {
		return []Article{}, nil
	}

	articles := []Article{}
	// Nested items are records of their own; their text also stays in the
	// enclosing item's title.
	goquery.NewDocumentFromNode(list).Find("li").Each(func(_ int, item *goquery.Selection) {
		href, ok := item.Find("a").First().Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			return
		}
		articles = append(articles, Article{
			Title: strings.TrimSpace(item.Text()),
			Link:  href,
		})
	})
	return articles, nil
}

// nextList walks forward in document order from the end of n's subtree and
// returns the first ul or ol element.
func nextList(n *html.Node) *html.Node {
	for cur := skipSubtree(n); cur != nil; cur = nextNode(cur) {
		if cur.Type == html.ElementNode && (cur.DataAtom == atom.Ul || cur.DataAtom == atom.Ol) {
			return cur
		}
	}
	return nil
}

// nextNode returns the node after n in a pre-order walk.
func nextNode(n *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	return skipSubtree(n)
}

// skipSubtree returns the first node after n that is not one of its descendants.
func skipSubtree(n *html.Node) *html.Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.NextSibling != nil {
			return cur.NextSibling
		}
	}
	return nil
}
