package dsl

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/shoprec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
	celEnvErr  error
)

// initCELEnv 初始化 CEL 环境，定义变量
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("user", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Program 是编译后的调权规则表达式，编译一次、多次求值，线程安全。
//
// 表达式语法（CEL 标准语法）：
//   - 标签：label.signal.contains("social") / label.followed_vendor == "true"
//   - 数值：item.score > 0.7
//   - 用户：user.segment == "vip" / user.engagement == "high"
//   - 逻辑：label.category == "dresses" && item.score > 10.0
//
// 注意：访问不存在的 key 会报错，应使用 label.key != null 检查存在性。
type Program struct {
	prg cel.Program
}

// Compile 编译一条表达式。
func Compile(expr string) (*Program, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %v", issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %v", err)
	}
	return &Program{prg: prg}, nil
}

// Eval 对单个候选项求值，返回布尔结果。
func (p *Program) Eval(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	out, _, err := p.prg.Eval(buildInput(item, rctx))
	if err != nil {
		return false, fmt.Errorf("eval error: %v", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func buildInput(item *core.Item, rctx *core.RecommendContext) map[string]interface{} {
	// label.signal 直接访问 Value；value 内可能是 merge 过的 'a|b' 形式
	labelAccessor := make(map[string]interface{}, len(item.Labels))
	for k, v := range item.Labels {
		labelAccessor[k] = v.Value
	}

	itemInput := map[string]interface{}{
		"id":    item.ID,
		"score": item.Score,
	}
	if ci := item.CatalogItem(); ci != nil {
		itemInput["category"] = ci.Category
		itemInput["brand"] = ci.Brand
		itemInput["vendor_id"] = ci.VendorID
		itemInput["price"] = ci.Price
		itemInput["rating"] = ci.Rating.Average
	}

	userInput := map[string]interface{}{
		"id":         "",
		"segment":    "",
		"engagement": "",
	}
	if rctx != nil {
		userInput["id"] = rctx.UserID
		if rctx.Profile != nil {
			userInput["segment"] = string(rctx.Profile.Analytics.UserSegment)
			userInput["engagement"] = string(rctx.Profile.Analytics.EngagementLevel)
		}
	}

	return map[string]interface{}{
		"item":  itemInput,
		"label": labelAccessor,
		"user":  userInput,
	}
}

// HasSignal 是一个小工具：判断 merge 过的 signal 标签值是否包含某一路信号。
func HasSignal(labelValue, signal string) bool {
	for _, part := range strings.Split(labelValue, "|") {
		if part == signal {
			return true
		}
	}
	return false
}
