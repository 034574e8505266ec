// 版权所有 2026 MediaFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 cache 提供媒体转换结果的有界 FIFO 缓存。

# 概述

相同参数（文本、音色、语言、语速）的合成请求在实际业务中频繁出现。
本包以严格先进先出的逐出策略维护一张有界 key→载荷映射：容量满时
逐出最早插入的那一条，并对被逐出的媒体载荷显式调用 Release 归还
底层资源（PCM 采样缓冲）。

# 不变量

  - 只有完整成功归一化之后的结果才会写入缓存；失败、取消、超时
    一律不落缓存。
  - 缓存大小永不超过配置容量；插入顺序决定逐出顺序（严格 FIFO，
    不是 LRU：命中不改变条目位置）。
  - 查找是纯读操作；发现载荷已被释放的失效条目时按缺失处理并移除。

# 键策略

Key 以语义相关的请求参数（文本内容、音色/模型标识、语言、语速等
影响输出的参数）经 SHA-256 生成确定性缓存键，前缀 "media:cache:"。
音频输入先经 Digest 折算成摘要再参与取键。
*/
package cache
