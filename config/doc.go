// Package config 提供 MediaFlow 的配置加载：
// 默认值 → YAML 文件 → 环境变量，三层覆盖。
package config
