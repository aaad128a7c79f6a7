package scholar

import (
	"strings"
	"testing"

	"github.com/RecoveryAshes/ScholarRank/internal/models"
)

const testPageURL = "https://scholar.google.com/scholar?start=0&q=graph+neural+networks&hl=en&as_sdt=0,5"

// fullBlock 字段齐全的结果块
const fullBlock = `
<div class="gs_r gs_or gs_scl">
  <div class="gs_ri">
    <h3 class="gs_rt"><a href="https://arxiv.org/abs/1806.01261">Relational inductive biases and graph networks</a></h3>
    <div class="gs_a">PW Battaglia, JB Hamrick, V Bapst - arXiv preprint, 2018 - arxiv.org</div>
    <div class="gs_fl"><a href="/scholar?cites=123">Cited by 3529</a></div>
  </div>
</div>`

// citationOnlyBlock 仅被引用条目,没有标题链接
const citationOnlyBlock = `
<div class="gs_r">
  <div class="gs_ri">
    <h3 class="gs_rt">[CITATION] Some untitled manuscript</h3>
    <div class="gs_a">AB Author - Journal of Things, 1997 - publisher.com</div>
  </div>
</div>`

// bareBlock 既无链接也无署名行的残缺块
const bareBlock = `
<div class="gs_r">
  <div class="gs_ri">
    <h3 class="gs_rt"><a href="https://example.com/paper">A paper without byline</a></h3>
  </div>
</div>`

func wrapPage(blocks ...string) []byte {
	return []byte("<html><body><div id=\"gs_res_ccl_mid\">" + strings.Join(blocks, "\n") + "</div></body></html>")
}

func TestParsePage_CompleteBlock(t *testing.T) {
	records, stats, err := NewParser().ParsePage(wrapPage(fullBlock), testPageURL)
	if err != nil {
		t.Fatalf("ParsePage() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("记录数 = %d, want 1", len(records))
	}

	r := records[0]
	if r.Title != "Relational inductive biases and graph networks" {
		t.Errorf("Title = %q", r.Title)
	}
	if r.Link != "https://arxiv.org/abs/1806.01261" {
		t.Errorf("Link = %q", r.Link)
	}
	if r.Citations != 3529 {
		t.Errorf("Citations = %d, want 3529", r.Citations)
	}
	if r.Year != 2018 {
		t.Errorf("Year = %d, want 2018", r.Year)
	}
	if r.Author != " Battaglia, JB Hamrick, V Bapst" {
		t.Errorf("Author = %q", r.Author)
	}
	if stats.CitationMisses != 0 || stats.YearMisses != 0 {
		t.Errorf("完整块不应产生缺失统计: %+v", stats)
	}
}

func TestParsePage_MissingFieldsGetPlaceholders(t *testing.T) {
	records, stats, err := NewParser().ParsePage(wrapPage(citationOnlyBlock), testPageURL)
	if err != nil {
		t.Fatalf("ParsePage() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("记录数 = %d, want 1", len(records))
	}

	r := records[0]
	if r.Title != models.TitleNotFound {
		t.Errorf("Title = %q, want 占位值", r.Title)
	}
	if r.Link != models.LinkNotFound(testPageURL) {
		t.Errorf("Link = %q, want 指向结果页的占位值", r.Link)
	}
	// 块内没有被引标记,按0计并计入缺失
	if r.Citations != 0 {
		t.Errorf("Citations = %d, want 0", r.Citations)
	}
	if stats.CitationMisses != 1 {
		t.Errorf("CitationMisses = %d, want 1", stats.CitationMisses)
	}
	// 署名行存在,年份和作者正常提取
	if r.Year != 1997 {
		t.Errorf("Year = %d, want 1997", r.Year)
	}
	if stats.YearMisses != 0 {
		t.Errorf("YearMisses = %d, want 0", stats.YearMisses)
	}
}

func TestParsePage_MissingByline(t *testing.T) {
	records, stats, err := NewParser().ParsePage(wrapPage(bareBlock), testPageURL)
	if err != nil {
		t.Fatalf("ParsePage() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("记录数 = %d, want 1", len(records))
	}

	r := records[0]
	if r.Year != 0 {
		t.Errorf("Year = %d, want 0", r.Year)
	}
	if r.Author != models.AuthorNotFound {
		t.Errorf("Author = %q, want 占位值", r.Author)
	}
	if stats.YearMisses != 1 {
		t.Errorf("YearMisses = %d, want 1", stats.YearMisses)
	}
}

func TestParsePage_EveryBlockYieldsOneRecord(t *testing.T) {
	page := wrapPage(fullBlock, citationOnlyBlock, bareBlock, fullBlock)
	records, _, err := NewParser().ParsePage(page, testPageURL)
	if err != nil {
		t.Fatalf("ParsePage() error = %v", err)
	}
	// 块数与记录数一一对应,字段缺失不会丢块
	if len(records) != 4 {
		t.Fatalf("记录数 = %d, want 4", len(records))
	}
	if records[0].Citations != 3529 || records[3].Citations != 3529 {
		t.Error("相同块应产出相同引用数")
	}
	if records[1].Title != models.TitleNotFound {
		t.Error("第二块应使用标题占位值")
	}
}

func TestParsePage_EmptyPage(t *testing.T) {
	records, stats, err := NewParser().ParsePage([]byte("<html><body>no results</body></html>"), testPageURL)
	if err != nil {
		t.Fatalf("ParsePage() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("空页面记录数 = %d, want 0", len(records))
	}
	if stats.CitationMisses != 0 || stats.YearMisses != 0 {
		t.Errorf("空页面不应产生缺失统计: %+v", stats)
	}
}
