package treebank

// ws: ASCII 空白类（含 \v；Go 的 \s 不含 \v）。
const ws = `[\t\n\v\f\r ]`

// Rule: 一条替换规则（RE2 模式 + regexp.Expand 模板）。
type Rule struct {
	Pattern string
	Replace string
}

// cascade: Penn Treebank 风格的规则级联，逐条对整行各执行一次 ReplaceAll。
// 顺序即契约：后续规则依赖前序规则产生的文本形态（例如先统一引号再处理结束引号间距）。
var cascade = []Rule{
	// 空白：任意空白串折叠为单个空格（行尾换行也在此被吸收）。
	{ws + `+`, " "},

	// 起始引号 → ``
	{`^"`, "``"},
	{"(``)", " $1 "},
	{"([ (\\[{<])\"", "$1 `` "},

	// 标点
	{`([:,])([^\d])`, " $1 $2"},
	{`([:,])$`, " $1 "},
	{`\.\.\.`, " ... "},
	{`[;@#$%&]`, " $0 "},
	{`([^\.])(\.)([\]\)}>"']*)` + ws + `*$`, "$1 $2$3 "},
	{`[?!]`, " $0 "},

	// 缩约
	{`([^'])' `, "$1 ' "},
	{`(?i)\b(can)(not)\b`, "$1 $2"},
	{`(?i)\b(d)('ye)\b`, "$1 $2"},
	{`(?i)\b(gim)(me)\b`, "$1 $2"},
	{`(?i)\b(gon)(na)\b`, "$1 $2"},
	{`(?i)\b(got)(ta)\b`, "$1 $2"},
	{`(?i)\b(lem)(me)\b`, "$1 $2"},
	{`(?i)\b(mor)('n)\b`, "$1 $2"},
	// 以下三条的锚点会吞掉一个空白，模板需补回空格，否则相邻词被粘连。
	{`(?i)\b(wan)(na)(?:$|` + ws + `)`, "$1 $2 "},
	{`(?i)(?:^|` + ws + `)('t)(is)\b`, " $1 $2"},
	{`(?i)(?:^|` + ws + `)('t)(was)\b`, " $1 $2"},

	// 括号
	{`[\]\[\(\)\{\}<>]`, " $0 "},
	{`--`, " -- "},

	// 结束引号 → ''
	{`"`, " '' "},
	{`(\S)('')`, "$1 $2 "},
	{`([^' ])('s|'m|'d|')(?:` + ws + `|$)`, "$1 $2 "},
	{`([^' ])('ll|'re|'ve|n't)(?:` + ws + `|$)`, "$1 $2 "},
}

// Rules 返回默认级联的副本。
func Rules() []Rule {
	out := make([]Rule, len(cascade))
	copy(out, cascade)
	return out
}
