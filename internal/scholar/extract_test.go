package scholar

import (
	"errors"
	"testing"

	"github.com/RecoveryAshes/ScholarRank/internal/models"
)

func TestExtractCitationCount(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
		wantErr bool
		reason  string
	}{
		{
			name:    "标准格式",
			content: `... Cited by 42<`,
			want:    42,
			wantErr: false,
			reason:  "标记后接数字,遇'<'截断",
		},
		{
			name:    "嵌在链接中的标记",
			content: `<div class="gs_fl"><a href="/scholar?cites=1">Cited by 3529</a></div>`,
			want:    3529,
			wantErr: false,
			reason:  "真实结果块里标记出现在脚注链接文本中",
		},
		{
			name:    "无标记",
			content: "nothing relevant here",
			want:    0,
			wantErr: true,
			reason:  "内容中不含被引标记",
		},
		{
			name:    "空内容",
			content: "",
			want:    0,
			wantErr: true,
			reason:  "空串没有标记",
		},
		{
			name:    "多个标记取最后一个",
			content: "Cited by 10< middle Cited by 99<",
			want:    99,
			wantErr: false,
			reason:  "同一块内多次出现时以最后一次为准",
		},
		{
			name:    "标记在内容末尾",
			content: "something Cited by ",
			want:    0,
			wantErr: true,
			reason:  "窗口钳制为空串,不合法",
		},
		{
			name:    "数字在内容末尾无截断符",
			content: "Cited by 7",
			want:    7,
			wantErr: false,
			reason:  "窗口钳制到内容结尾",
		},
		{
			name:    "超长数字截断为5位",
			content: "Cited by 123456<",
			want:    12345,
			wantErr: false,
			reason:  "读取窗口上限为5个字符",
		},
		{
			name:    "窗口不是数字",
			content: "Cited by abc<",
			want:    0,
			wantErr: true,
			reason:  "非数字窗口视为提取失败",
		},
		{
			name:    "标记后直接是截断符",
			content: "Cited by <b>",
			want:    0,
			wantErr: true,
			reason:  "窗口至少含1个字符,此时为'<'本身",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractCitationCount(tt.content)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractCitationCount() error = %v, wantErr %v (%s)", err, tt.wantErr, tt.reason)
			}
			if tt.wantErr && !errors.Is(err, models.ErrNotFound) {
				t.Errorf("错误应包装ErrNotFound, got %v", err)
			}
			if got != tt.want {
				t.Errorf("ExtractCitationCount() = %v, want %v (%s)", got, tt.want, tt.reason)
			}
		})
	}
}

func TestExtractYear(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
		wantErr bool
		reason  string
	}{
		{
			name:    "标准署名行",
			content: "PW Battaglia, JB Hamrick - arXiv preprint, 2018 - arxiv.org",
			want:    2018,
			wantErr: false,
			reason:  "最后一个分隔符前的4字符窗口",
		},
		{
			name:    "多个分隔符取最后一个",
			content: "X - 1999 - Y, 2005 - Z",
			want:    2005,
			wantErr: false,
			reason:  "前面的年份被后出现的分隔符覆盖",
		},
		{
			name:    "无分隔符",
			content: "no separators here",
			want:    0,
			wantErr: true,
			reason:  "分隔符缺失属于提取失败",
		},
		{
			name:    "窗口不是数字",
			content: "A Author - publisher",
			want:    0,
			wantErr: false,
			reason:  "窗口存在但非数字,按0处理不报错",
		},
		{
			name:    "分隔符靠近开头",
			content: "a- b",
			want:    0,
			wantErr: false,
			reason:  "窗口钳制为空串,按0处理",
		},
		{
			name:    "空内容",
			content: "",
			want:    0,
			wantErr: true,
			reason:  "空串没有分隔符",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractYear(tt.content)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractYear() error = %v, wantErr %v (%s)", err, tt.wantErr, tt.reason)
			}
			if got != tt.want {
				t.Errorf("ExtractYear() = %v, want %v (%s)", got, tt.want, tt.reason)
			}
		})
	}
}

func TestExtractAuthor(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
		reason  string
	}{
		{
			name:    "标准署名行",
			content: "PW Battaglia, JB Hamrick, V Bapst - arXiv preprint, 2018 - arxiv.org",
			want:    " Battaglia, JB Hamrick, V Bapst",
			wantErr: false,
			reason:  "取第一个分隔符之前的内容,跳过开头2个字符",
		},
		{
			name:    "无分隔符",
			content: "nobody relevant",
			want:    "",
			wantErr: true,
			reason:  "分隔符缺失属于提取失败",
		},
		{
			name:    "分隔符过近产生空串",
			content: "a- rest",
			want:    "",
			wantErr: false,
			reason:  "空作者串是合法返回值",
		},
		{
			name:    "内容只有分隔符",
			content: "-",
			want:    "",
			wantErr: false,
			reason:  "窗口两端都被钳制",
		},
		{
			name:    "空内容",
			content: "",
			want:    "",
			wantErr: true,
			reason:  "空串没有分隔符",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractAuthor(tt.content)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractAuthor() error = %v, wantErr %v (%s)", err, tt.wantErr, tt.reason)
			}
			if got != tt.want {
				t.Errorf("ExtractAuthor() = %q, want %q (%s)", got, tt.want, tt.reason)
			}
		})
	}
}
