package service

import (
	"fmt"
	"sort"
	"strings"

	"ksit-nexus/backend/internal/model"
)

// 摘要长度上限（词数）
const (
	shortSummaryWords = 25
	longSummaryWords  = 80
	maxKeyPoints      = 3
)

// SummaryGenerator 通知摘要生成器
// 纯抽取式、完全确定：同一输入任何时候生成字节一致的输出，
// 不引入时钟、随机数或外部调用。
type SummaryGenerator interface {
	// Generate 生成单条通知的摘要（short 为单句，long 为段落）
	Generate(n *model.Notification, kind model.SummaryKind) *model.NotificationSummary
	// DigestText 生成一组通知的汇总文本，按类型分组；超过 maxLen 字符时截断
	DigestText(notifications []model.Notification, maxLen int) string
}

type summaryGenerator struct{}

// NewSummaryGenerator 创建 SummaryGenerator 实例
func NewSummaryGenerator() SummaryGenerator {
	return &summaryGenerator{}
}

func (g *summaryGenerator) Generate(n *model.Notification, kind model.SummaryKind) *model.NotificationSummary {
	sentences := splitSentences(n.Message)

	var text string
	switch kind {
	case model.SummaryLong:
		text = joinWithinWords(sentences, longSummaryWords)
	default:
		kind = model.SummaryShort
		if len(sentences) > 0 {
			text = truncateWords(sentences[0], shortSummaryWords)
		}
	}
	if text == "" {
		text = truncateWords(n.Title, shortSummaryWords)
	}

	return &model.NotificationSummary{
		NotificationID: n.NotificationID,
		Kind:           kind,
		Summary:        text,
		WordCount:      len(strings.Fields(text)),
		KeyPoints:      keyPoints(sentences, maxKeyPoints),
	}
}

func (g *summaryGenerator) DigestText(notifications []model.Notification, maxLen int) string {
	// 按类型分组，输出顺序固定为类型声明顺序，组内保持传入顺序
	grouped := make(map[model.NotificationType][]model.Notification)
	for _, n := range notifications {
		grouped[n.Type] = append(grouped[n.Type], n)
	}

	var b strings.Builder
	for _, typ := range model.AllNotificationTypes {
		items := grouped[typ]
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "【%s】%d 条\n", typeLabel(typ), len(items))
		for _, n := range items {
			line := n.Title
			if first := firstSentence(n.Message); first != "" {
				line += ": " + truncateWords(first, shortSummaryWords)
			}
			fmt.Fprintf(&b, "- %s\n", line)
		}
	}

	text := strings.TrimRight(b.String(), "\n")
	if maxLen > 0 {
		runes := []rune(text)
		if len(runes) > maxLen {
			text = string(runes[:maxLen-1]) + "…"
		}
	}
	return text
}

// ── 文本处理辅助 ──

var sentenceEnders = []string{". ", "! ", "? ", "。", "！", "？", "\n"}

// splitSentences 按句末标点切分正文，丢弃空句
func splitSentences(text string) []string {
	segments := []string{text}
	for _, sep := range sentenceEnders {
		var next []string
		for _, seg := range segments {
			next = append(next, strings.Split(seg, sep)...)
		}
		segments = next
	}

	sentences := make([]string, 0, len(segments))
	for _, s := range segments {
		s = strings.TrimSpace(strings.TrimRight(s, ".!?"))
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func firstSentence(text string) string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return ""
	}
	return sentences[0]
}

// truncateWords 截断到指定词数，截断时以省略号结尾
func truncateWords(text string, limit int) string {
	words := strings.Fields(text)
	if len(words) <= limit {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:limit], " ") + "…"
}

// joinWithinWords 依次拼接整句，直到词数预算用尽；至少保留一句
func joinWithinWords(sentences []string, limit int) string {
	var kept []string
	used := 0
	for i, s := range sentences {
		w := len(strings.Fields(s))
		if i > 0 && used+w > limit {
			break
		}
		kept = append(kept, s)
		used += w
	}
	text := strings.Join(kept, ". ")
	if text != "" {
		text += "."
	}
	return truncateWords(text, limit)
}

// keyPoints 以词频显著度为句子打分，取前 limit 句并按原文顺序输出
func keyPoints(sentences []string, limit int) model.StringArray {
	if len(sentences) == 0 {
		return model.StringArray{}
	}

	// 全文词频（忽略短词）
	freq := make(map[string]int)
	for _, s := range sentences {
		for _, w := range strings.Fields(strings.ToLower(s)) {
			w = strings.Trim(w, ",.;:!?\"'()")
			if len(w) > 3 {
				freq[w]++
			}
		}
	}

	type scored struct {
		index int
		score int
	}
	ranked := make([]scored, len(sentences))
	for i, s := range sentences {
		total := 0
		for _, w := range strings.Fields(strings.ToLower(s)) {
			w = strings.Trim(w, ",.;:!?\"'()")
			total += freq[w]
		}
		ranked[i] = scored{index: i, score: total}
	}
	// 分数相同取靠前的句子，保证结果稳定
	sort.SliceStable(ranked, func(a, b int) bool {
		if ranked[a].score != ranked[b].score {
			return ranked[a].score > ranked[b].score
		}
		return ranked[a].index < ranked[b].index
	})

	if limit > len(ranked) {
		limit = len(ranked)
	}
	picked := ranked[:limit]
	sort.Slice(picked, func(a, b int) bool { return picked[a].index < picked[b].index })

	points := make(model.StringArray, len(picked))
	for i, p := range picked {
		points[i] = sentences[p.index]
	}
	return points
}

// typeLabel 通知类型的展示名
func typeLabel(t model.NotificationType) string {
	switch t {
	case model.TypeComplaint:
		return "投诉"
	case model.TypeStudyGroup:
		return "学习小组"
	case model.TypeNotice:
		return "公告"
	case model.TypeReservation:
		return "预约"
	case model.TypeFeedback:
		return "反馈"
	case model.TypeAnnouncement:
		return "重要通告"
	default:
		return "其他"
	}
}
