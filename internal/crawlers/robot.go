package crawlers

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// robotPhrases 人机验证页面的特征短语
var robotPhrases = []string{
	"unusual traffic from your computer network",
	"not a robot",
}

// IsRobotPage 判断原始响应体是否为人机验证页面
// 特征短语都是ASCII,在原始字节上匹配与Latin-1解码后匹配等价
func IsRobotPage(body []byte) bool {
	for _, phrase := range robotPhrases {
		if bytes.Contains(body, []byte(phrase)) {
			return true
		}
	}
	return false
}

// IsRobotText 判断可见文本是否包含人机验证特征
func IsRobotText(text string) bool {
	for _, phrase := range robotPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

// VisibleText 提取HTML中的可见文本,跳过script和style子树
// 浏览器路径在渲染后的可见文本上做人机验证判断,而不是原始标记
func VisibleText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return sb.String(), nil
}
