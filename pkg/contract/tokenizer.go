package contract

// Tokenizer: 对单行原始字节做分词，返回以单个 ASCII 空格标记 token 边界的字节序列。
// 约束：
//  1. 纯函数：同一输入恒得同一输出，与调用顺序无关；
//  2. 不拒绝任何输入（任意字节均可）；
//  3. 输入行包含其结尾换行符；
//  4. 返回值归调用方所有，实现不得在之后修改它。
type Tokenizer interface {
	Tokenize(line []byte) []byte
}
