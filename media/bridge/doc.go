// Copyright (c) MediaFlow Authors.
// Licensed under the MIT License.

/*
Package bridge 把一次非阻塞网络交换封装为可取消、可超时的单元。

# 调度模型

每个适配器实例持有一个 Bridge，对应恰好一个操作槽：同一时刻至多
存在一个在途 Operation，占槽期间的新请求立即得到 BUSY 错误。
传输往返在唯一的工作协程中执行，结果经缓冲通道送回；Do 所在的
调用方协程以注入时钟的节拍轮询，每个节拍依次检查：

  1. 操作是否完成（成功响应原样返回 status/header/body）；
  2. 取消标志是否被抬起（中止传输，返回 CANCELLED）；
  3. 墙钟耗时是否超过配置超时（中止传输，返回 TIMEOUT，
     错误信息携带实际耗时）。

取消是协作式的：Cancel 只抬旗，传输在下一个节拍被中止，而非
立即中断。超时按派发时刻的墙钟计量，与节拍粗细无关。结果只解析
一次：完成与取消在同一节拍竞争时，按上述顺序取先者。

# 时钟注入

轮询节拍来自 Clock 接口而非全局时钟，宿主（或测试）注入自己的
节拍源即可完全控制调度推进。生产代码使用 SystemClock。
*/
package bridge
