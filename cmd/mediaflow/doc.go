// Copyright (c) MediaFlow Authors.
// Licensed under the MIT License.

/*
Package main 提供 MediaFlow 命令行程序入口。

# 概述

cmd/mediaflow 是 MediaFlow 媒体转换管线的可执行入口，提供语音转写、
语音合成、音色查询、图像描述和版本查询等子命令。程序支持 YAML
配置文件加载、环境变量覆盖、结构化日志（zap）以及可选的 OpenTelemetry
遥测导出。

# 主要能力

  - 子命令：transcribe（音频转文本）、synthesize（文本转语音）、
    voices（列出可用音色）、describe（图像描述）、version
  - 配置：默认值 → YAML 文件 → MEDIAFLOW_* 环境变量，三层覆盖
  - 单次执行模型：每次调用完成一个转换操作后退出
  - 退出码：0 成功、1 操作失败、2 用法错误
  - 构建注入：Version、BuildTime、GitCommit 通过 ldflags 设置
*/
package main
