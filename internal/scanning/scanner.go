package scanning

import "context"

// extractionPrompt is the shared instruction prompt sent with every receipt
// image. It demands a single JSON object with three Japanese keys and
// forbids any other output format; the parser in parse.go is built around
// exactly this layout.
const extractionPrompt = `この医療費領収書から以下の情報を抽出してください。
1.患者氏名（正確に抽出してください。周囲に「氏名」や「様」と記載されている場合が多いです。）
2.医療機関名（正式名称を抽出してください。1枚の領収書に薬局と病院の名前が印刷されている場合、薬局の名前を抽出してください。）
3.支払った医療費の金額（数字のみ）

### 出力フォーマット:
` + "```json" + `
{
  "患者氏名": "値1",
  "医療機関名": "値2",
  "支払った医療費の金額": "値3"
}
` + "```" + `

**[重要事項]**
- **このフォーマット以外の出力を禁止します**。
- JSONのフィールドは必ず指定された形式で出力してください。`

// Scanner defines the interface for one classification call against a
// multimodal model. Implementations send a single image per request and
// return the model's raw text response; interpreting that text is the
// parser's job, not the scanner's.
type Scanner interface {
	// Scan sends one receipt image and returns the raw model response
	Scan(ctx context.Context, image []byte, contentType string) (string, error)
	// Close releases any underlying client resources
	Close() error
}
