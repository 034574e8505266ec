// Package factory 提供按能力划分的适配器工厂，
// 将提供商配置解析为具体的能力契约实例，打破 media 包与各适配器子包之间的循环依赖。
package factory
