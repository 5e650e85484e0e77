// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package prompt

import (
	"fmt"
	"strings"

	"github.com/poiesic/lunaris/core"
)

const summarySystem = `
        Bạn là một AI chuyên gia trong việc trích xuất và phân tích thông tin người dùng từ các cuộc trò chuyện.
        Hãy trích xuất thông tin theo định dạng text với 3 mục chính như được yêu cầu.
        `

const summaryTemplate = `
        Dựa trên các câu hỏi và nội dung chat của người dùng dưới đây, hãy trích xuất thông tin về người dùng này:

        Thông tin hiện tại của người dùng và 5 đoạn chat gần nhất:
        %s

        Hãy trích xuất(bổ sung thêm nếu cần) và trả về thông tin theo định dạng text với 3 mục chính:

        1. Thông tin cơ bản:
        - Tên (nếu có đề cập)
        - Tên biệt danh (nếu có đề cập)
        - Tuổi (nếu có đề cập)
        - Gia đình (nếu có đề cập)
        - Tính cách (dựa vào các câu hỏi và nội dung chat của người dùng)
        - Quê quán (nếu có đề cập)
        - Giới tính (nếu có đề cập)
        - Trình độ học vấn (H1-H6, nếu có đề cập)
        - Nghề nghiệp hiện tại (nếu có đề cập)
        - Trường học (nếu có đề cập)
        - Nơi làm việc (nếu có đề cập)
        - Các thông tin khác (nếu có đề cập)

        2. Từ khóa tiếng Trung tôi thường xuyên hỏi:
        - Liệt kê các từ khóa tiếng Trung mà user thường hỏi (bao quát tất cả các từ khóa, không bỏ sót)

        3. Chủ đề tôi thường xuyên hỏi:
        - Liệt kê các chủ đề mà user thường hỏi (bao quát tất cả các chủ đề, không bỏ sót)

        Nếu không có thông tin nào được đề cập, hãy ghi "Không có thông tin" hoặc "Chưa có dữ liệu".
        Trả về kết quả dưới dạng text có cấu trúc rõ ràng với 3 mục trên.
        Không cần câu dẫn đầu, chỉ trả về kết quả.
        `

// SummaryInput combines the stored profile summary with the most recent
// user messages into the text the summarizer is asked to distill.
func SummaryInput(about string, recent []string) string {
	return fmt.Sprintf("**Thông tin hiện tại của người dùng**: %s\n**5 đoạn chat gần nhất**: %s",
		about, strings.Join(recent, "\n- "))
}

// SummaryTurns builds the one-shot profile summarization exchange.
func SummaryTurns(input string) []core.Turn {
	return []core.Turn{
		{Role: core.RoleSystem, Content: summarySystem},
		{Role: core.RoleUser, Content: fmt.Sprintf(summaryTemplate, input)},
	}
}
