// Copyright 2026 MediaFlow Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.

/*
Package testutil 提供 MediaFlow 测试的共享工具和辅助函数。

# 概述

testutil 包为整个项目的单元测试提供统一的辅助能力，避免各包
重复实现相似的测试基础设施。所有测试应优先使用此包中的工具。

# 核心能力

  - 上下文辅助: TestContext / TestContextWithTimeout / CancelledContext，
    自动注册 Cleanup 防止泄漏
  - 假时钟: FakeClock 实现 bridge.Clock，Advance 手动推进时间并
    同步投递节拍，使轮询调度完全确定化
  - 传输打桩: RoundTripFunc / CountingTransport / GatedTransport，
    分别用于内联打桩、统计网络调用次数、手动放行在途请求
  - 断言工具: AssertErrorCode / AssertEventuallyTrue

# 使用示例

	clock := testutil.NewFakeClock()
	gate := testutil.NewGatedTransport()
	b := bridge.New(bridge.Config{Transport: gate}, clock, nil)

	go func() { resp, err = b.Do(ctx, req) }()
	clock.BlockUntil(1)
	gate.Release(200, `{"text":"ok"}`)
	clock.Advance(bridge.DefaultPollInterval)
*/
package testutil
