// Copyright (c) MediaFlow Authors.
// Licensed under the MIT License.

/*
Package media 定义媒体转换管线的能力契约与共享类型。

# 概述

MediaFlow 将三类媒体转换能力——语音识别（STT）、语音合成（TTS）与
图文视觉推理（Vision）——抽象为统一的能力契约。调用方只依赖本包的
接口，即可在本地与托管后端之间切换，而无需修改调用点。

# 核心接口

  - Transcriber：语音识别契约，支持纯文本与带置信度两种转写。
  - Synthesizer：语音合成契约，支持音色列表与语速调节。
  - Vision：图文视觉推理契约。
  - Payload：可显式释放的缓存载荷（音频采样、转写文本）。

# 错误模型

所有失败以 *Error 返回，携带统一错误码（参数、配置、不可用、超时、
取消、协议、解码、不支持）。调用方通过 GetCode / IsCode 判定类别，
通过 IsRetryable 判定是否值得退避重试；核心自身从不自动重试。

# 并发模型

单个适配器实例同一时刻至多持有一个在途请求；并发调用同一适配器
属于契约之外的用法，会得到 BUSY 错误。跨适配器实例相互独立，
可以并行使用。
*/
package media
